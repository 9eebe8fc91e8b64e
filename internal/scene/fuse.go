package scene

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/ironsheep/tourguide/internal/detection"
	"github.com/ironsheep/tourguide/internal/geometry"
)

// Fuse assembles a Record. It performs no I/O, does not retain references
// to mutable input slices, and returns the same Record for the same Inputs.
func Fuse(in Inputs) Record {
	rec := Record{
		SourceImage:    in.SourceImage,
		Mode:           in.Mode,
		ModeSource:     SourceHeuristic,
		Objects:        []Object{},
		Counts:         map[string]int{},
		Depth:          in.Depth,
		Geometry:       in.Geometry,
		Dimensions:     in.Dimensions,
		Orientation:    in.Orientation,
		AnnotatedImage: in.AnnotatedImage,
		CountsCSV:      in.CountsCSV,
	}

	if in.Override {
		rec.ModeSource = SourceOverride
	} else if c := in.Classification; c != nil {
		rec.Classifier = &ClassifierScores{
			Colorfulness: c.Scores.Colorfulness,
			EdgeDensity:  c.Scores.EdgeDensity,
			Degraded:     c.Degraded,
		}
	}

	if d := in.Detection; d != nil {
		rec.Detector = Detector{
			Name:     d.Provider,
			Kind:     string(d.Kind),
			Fallback: d.Fallback,
			Reason:   d.Reason,
		}
		metric, hasScale := in.Dimensions.(geometry.MetricEstimate)
		for _, inst := range d.Instances {
			obj := Object{
				Label:      inst.Label,
				Confidence: inst.Confidence,
				BBox:       inst.Box.XYXY(),
				HasMask:    inst.HasMask(),
			}
			if hasScale {
				obj.ObjectMetrics = measureObject(obj.Label, obj.BBox, metric.PxToM)
			}
			rec.Objects = append(rec.Objects, obj)
		}
		rec.Counts = detection.Counts(d.Instances)
	}

	if len(in.Annotations) > 0 {
		rec.Annotations = make([]Annotation, len(in.Annotations))
		for i, a := range in.Annotations {
			rec.Annotations[i] = a
			if a.Meters != nil {
				m := *a.Meters
				rec.Annotations[i].Meters = &m
			}
		}
	}
	if in.Caption != nil {
		c := *in.Caption
		rec.Caption = &c
	}
	return rec
}

// CountsCSV renders label counts as a Label,Count table sorted by label.
func CountsCSV(counts map[string]int) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Label", "Count"}); err != nil {
		return nil, err
	}
	for _, label := range detection.SortedLabels(counts) {
		if err := w.Write([]string{label, strconv.Itoa(counts[label])}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write counts csv: %w", err)
	}
	return buf.Bytes(), nil
}
