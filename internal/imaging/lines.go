package imaging

import (
	"image"
	"math"
	"sort"
)

// Segment is a straight line segment found in an edge map.
type Segment struct {
	Start        image.Point `json:"start"`
	End          image.Point `json:"end"`
	Length       float64     `json:"length"`
	AngleDegrees float64     `json:"angle_degrees"`
	Votes        int         `json:"votes"`
}

// HoughSegments finds straight segments in an edge map with a Hough transform.
//
// Parameters:
//   - edges: Edge map as produced by Canny (non-zero pixels are edges).
//   - minLength: Segments shorter than this, or supported by fewer than
//     minLength/2 accumulator votes, are discarded.
//   - maxSegments: Upper bound on returned segments, strongest first. Zero or
//     negative means no bound.
//
// Segment endpoints are the extreme edge pixels lying within 2 pixels of the
// detected (rho, theta) line, so collinear dashes merge into one segment.
func HoughSegments(edges *image.Gray, minLength, maxSegments int) []Segment {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	points := make([]image.Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y > 0 {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}
	if len(points) == 0 {
		return []Segment{}
	}

	// Hough transform parameters
	maxDist := int(math.Sqrt(float64(width*width + height*height)))
	numAngles := 180
	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for theta := 0; theta < numAngles; theta++ {
		angle := float64(theta) * math.Pi / 180.0
		cosT[theta] = math.Cos(angle)
		sinT[theta] = math.Sin(angle)
	}

	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	for _, p := range points {
		for theta := 0; theta < numAngles; theta++ {
			rho := float64(p.X)*cosT[theta] + float64(p.Y)*sinT[theta]
			rhoIdx := int(rho) + maxDist
			if rhoIdx >= 0 && rhoIdx < maxDist*2 {
				accumulator[rhoIdx][theta]++
			}
		}
	}

	type peak struct {
		rho   int
		theta int
		votes int
	}
	peaks := make([]peak, 0)
	threshold := minLength / 2
	if threshold < 1 {
		threshold = 1
	}

	for rhoIdx := 0; rhoIdx < maxDist*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			votes := accumulator[rhoIdx][theta]
			if votes < threshold {
				continue
			}
			// Local maximum in a 5x5 neighbourhood; theta wraps around
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < maxDist*2 && accumulator[nr][nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxDist, theta: theta, votes: votes})
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	segments := make([]Segment, 0)
	for _, pk := range peaks {
		if maxSegments > 0 && len(segments) >= maxSegments {
			break
		}

		cosA := cosT[pk.theta]
		sinA := sinT[pk.theta]
		rho := float64(pk.rho)

		var start, end image.Point
		minProj := math.MaxFloat64
		maxProj := -math.MaxFloat64
		onLine := 0
		for _, p := range points {
			if math.Abs(float64(p.X)*cosA+float64(p.Y)*sinA-rho) >= 2.0 {
				continue
			}
			onLine++
			// Project along the line direction (-sin, cos)
			d := -float64(p.X)*sinA + float64(p.Y)*cosA
			if d < minProj {
				minProj = d
				start = p
			}
			if d > maxProj {
				maxProj = d
				end = p
			}
		}
		if onLine < minLength/2 || onLine == 0 {
			continue
		}

		dx := float64(end.X - start.X)
		dy := float64(end.Y - start.Y)
		length := math.Sqrt(dx*dx + dy*dy)
		if length < float64(minLength) {
			continue
		}

		segments = append(segments, Segment{
			Start:        start.Add(bounds.Min),
			End:          end.Add(bounds.Min),
			Length:       math.Round(length*10) / 10,
			AngleDegrees: math.Round(math.Atan2(dy, dx)*180/math.Pi*10) / 10,
			Votes:        pk.votes,
		})
	}

	return segments
}
