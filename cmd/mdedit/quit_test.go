package main

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestQuitGuard(t *testing.T) {
	type request struct {
		dirty bool
		edits int
		want  bool
	}
	tt := []struct {
		name  string
		steps []request
		warns int
	}{
		{"clean", []request{{false, 0, true}}, 0},
		{"dirty twice", []request{{true, 3, false}, {true, 3, true}}, 1},
		{"edit after warning", []request{{true, 3, false}, {true, 4, false}, {true, 4, true}}, 2},
		{"saved after warning", []request{{true, 3, false}, {false, 3, true}}, 1},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			q := &quitGuard{log: zap.New(core)}
			for i, r := range tc.steps {
				if got := q.allow("Cmd-q", r.dirty, r.edits); got != r.want {
					t.Errorf("request %d: allow = %v, want %v", i, got, r.want)
				}
			}
			if got := logs.FilterLevelExact(zapcore.WarnLevel).Len(); got != tc.warns {
				t.Errorf("%d warnings, want %d", got, tc.warns)
			}
		})
	}
}
