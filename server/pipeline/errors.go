// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/world"
)

// Stage is the step of generation that failed.
type Stage uint8

const (
	StageMapData Stage = iota
	StageSurface
)

func (stage Stage) String() string {
	switch stage {
	case StageMapData:
		return "map data"
	case StageSurface:
		return "surface"
	default:
		return fmt.Sprintf("stage(%d)", uint8(stage))
	}
}

// GenerationFailure is reported when a request produced nothing.
// Origin is only known for StageMapData.
type GenerationFailure struct {
	Stage  Stage
	Origin world.Vec2f
	Err    error
}

func (f *GenerationFailure) Error() string {
	if f.Stage == StageMapData {
		return fmt.Sprintf("%s generation at %s failed: %v", f.Stage, f.Origin, f.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", f.Stage, f.Err)
}

func (f *GenerationFailure) Unwrap() error {
	return f.Err
}

// recovered turns a recovered panic value into an error.
func recovered(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
