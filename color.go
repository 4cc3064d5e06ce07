package capypdf

import "math"

// ColorKind tags Color's variant.
type ColorKind int

const (
	ColorDeviceRGB ColorKind = iota
	ColorDeviceGray
	ColorDeviceCMYK
	ColorIcc
	ColorLab
	ColorSeparation
	ColorPattern
)

// Color is a tagged union over every color space the draw operators can
// set. Components are clamped to [0,1] at construction; a NaN input
// clamps to 0.
type Color struct {
	Kind ColorKind

	R, G, B float64 // DeviceRGB
	Gray    float64 // DeviceGray
	C, M, Y, K float64 // DeviceCMYK

	IccID    IccColorSpaceId // Icc
	Channels []float64       // Icc

	LabID    LabColorSpaceId // Lab
	L, A, Bv float64         // Lab

	SepID SeparationId // Separation
	SepV  float64

	PatID PatternId // Pattern
}

// limitDouble clamps v to [0,1], mapping NaN to 0.
func limitDouble(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func NewDeviceRGB(r, g, b float64) Color {
	return Color{Kind: ColorDeviceRGB, R: limitDouble(r), G: limitDouble(g), B: limitDouble(b)}
}

func NewDeviceGray(v float64) Color {
	return Color{Kind: ColorDeviceGray, Gray: limitDouble(v)}
}

func NewDeviceCMYK(c, m, y, k float64) Color {
	return Color{Kind: ColorDeviceCMYK, C: limitDouble(c), M: limitDouble(m), Y: limitDouble(y), K: limitDouble(k)}
}

func NewIccColor(id IccColorSpaceId, channels []float64) Color {
	clamped := make([]float64, len(channels))
	for i, v := range channels {
		clamped[i] = limitDouble(v)
	}
	return Color{Kind: ColorIcc, IccID: id, Channels: clamped}
}

func NewLabColor(id LabColorSpaceId, l, a, b float64) Color {
	return Color{Kind: ColorLab, LabID: id, L: l, A: a, Bv: b}
}

func NewSeparationColor(id SeparationId, v float64) Color {
	return Color{Kind: ColorSeparation, SepID: id, SepV: limitDouble(v)}
}

func NewPatternColor(id PatternId) Color {
	return Color{Kind: ColorPattern, PatID: id}
}
