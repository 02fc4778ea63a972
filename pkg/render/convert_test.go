package render

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestConvertMissingTool(t *testing.T) {
	orig := converter
	converter = "nodeflow-no-such-converter"
	defer func() { converter = orig }()

	if _, err := ToPDF(context.Background(), []byte("<svg/>")); !errors.Is(err, ErrConverterMissing) {
		t.Errorf("ToPDF error = %v, want ErrConverterMissing", err)
	}
	if _, err := ToPNG(context.Background(), []byte("<svg/>"), 2); !errors.Is(err, ErrConverterMissing) {
		t.Errorf("ToPNG error = %v, want ErrConverterMissing", err)
	}
}

func TestToPNG(t *testing.T) {
	if _, err := exec.LookPath(converter); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"><rect width="4" height="4"/></svg>`)
	out, err := ToPNG(context.Background(), svg, 1)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if len(out) < 8 || string(out[1:4]) != "PNG" {
		t.Errorf("output is not a PNG: % x", out[:min(8, len(out))])
	}
}
