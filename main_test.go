package main

import (
	"testing"

	"texest/cmd"
)

func TestVersionVariable(t *testing.T) {
	tests := []struct {
		name     string
		setValue string
	}{
		{name: "default version", setValue: "dev"},
		{name: "semantic version", setValue: "1.2.3"},
		{name: "prerelease version", setValue: "2.3.4-beta.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := version
			defer func() { version = original }()

			version = tt.setValue
			if version != tt.setValue {
				t.Errorf("expected version %s, got %s", tt.setValue, version)
			}
		})
	}
}

func TestSetVersionDoesNotPanic(t *testing.T) {
	for _, v := range []string{"dev", "1.0.0", "v2.0.0-rc1"} {
		cmd.SetVersion(v)
		if cmd.GetVersion() != v {
			t.Errorf("expected GetVersion() to return %s, got %s", v, cmd.GetVersion())
		}
	}
}
