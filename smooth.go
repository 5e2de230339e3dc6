package gsketch

import "github.com/soypat/geometry/ms2"

// Chaikin applies the given number of corner-cutting iterations to pts and returns the result
// in a new slice. Closed curves are treated as polygons. Open curves keep their endpoints.
// Inputs with fewer than 3 points are returned as a copy.
func Chaikin(pts []ms2.Vec, iterations int, closed bool) []ms2.Vec {
	out := append([]ms2.Vec(nil), pts...)
	if len(pts) < 3 {
		return out
	}
	var buf []ms2.Vec
	for range iterations {
		buf = chaikinStep(buf[:0], out, closed)
		out, buf = buf, out
	}
	return out
}

func chaikinStep(dst, src []ms2.Vec, closed bool) []ms2.Vec {
	n := len(src)
	cut := func(a, b ms2.Vec) (q, r ms2.Vec) {
		q = ms2.Add(ms2.Scale(0.75, a), ms2.Scale(0.25, b))
		r = ms2.Add(ms2.Scale(0.25, a), ms2.Scale(0.75, b))
		return q, r
	}
	if closed {
		for i := range src {
			q, r := cut(src[i], src[(i+1)%n])
			dst = append(dst, q, r)
		}
		return dst
	}
	dst = append(dst, src[0])
	for i := 0; i < n-1; i++ {
		q, r := cut(src[i], src[i+1])
		dst = append(dst, q, r)
	}
	dst = append(dst, src[n-1])
	return dst
}
