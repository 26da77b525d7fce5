package narrow

import (
	"github.com/gazed/physics/math/lin"
)

// simplex is the up-to-4-point GJK simplex, ported field-for-field from the
// teacher's gjk_Simplex.
type simplex struct {
	a, b, c, d lin.V3
	num        uint32
}

func addToSimplex(s *simplex, point lin.V3) {
	switch s.num {
	case 1:
		s.b = s.a
		s.a = point
	case 2:
		s.c = s.b
		s.b = s.a
		s.a = point
	case 3:
		s.d = s.c
		s.c = s.b
		s.b = s.a
		s.a = point
	}
	s.num++
}

func tripleCross(a, b, c lin.V3) (tc lin.V3) {
	tc.Cross(&a, &b)
	tc.Cross(&tc, &c)
	return tc
}

func doSimplex2(s *simplex, direction *lin.V3) bool {
	a, b := s.a, s.b
	var ao, ab lin.V3
	ao.Neg(&a)
	ab.Sub(&b, &a)
	if ab.Dot(&ao) >= 0.0 {
		s.a, s.b, s.num = a, b, 2
		*direction = tripleCross(ab, ao, ab)
	} else {
		s.a, s.num = a, 1
		*direction = ao
	}
	return false
}

func doSimplex3(s *simplex, direction *lin.V3) bool {
	a, b, c := s.a, s.b, s.c
	var ao, ab, ac, abc lin.V3
	ao.Neg(&a)
	ab.Sub(&b, &a)
	ac.Sub(&c, &a)
	abc.Cross(&ab, &ac)

	var abcXac lin.V3
	abcXac.Cross(&abc, &ac)
	if abcXac.Dot(&ao) >= 0.0 {
		if ac.Dot(&ao) >= 0.0 {
			s.a, s.b, s.num = a, c, 2
			*direction = tripleCross(ac, ao, ac)
		} else if ab.Dot(&ao) >= 0.0 {
			s.a, s.b, s.num = a, b, 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.a = a
			s.num = 1
			*direction = ao
		}
		return false
	}
	var abXabc lin.V3
	abXabc.Cross(&ab, &abc)
	if abXabc.Dot(&ao) >= 0.0 {
		if ab.Dot(&ao) >= 0.0 {
			s.a, s.b, s.num = a, b, 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.a = a
			s.num = 1
			*direction = ao
		}
		return false
	}
	if abc.Dot(&ao) >= 0.0 {
		s.a, s.b, s.c, s.num = a, b, c, 3
		*direction = abc
	} else {
		s.a, s.b, s.c, s.num = a, c, b, 3
		var neg lin.V3
		neg.Neg(&abc)
		*direction = neg
	}
	return false
}

func doSimplex4(s *simplex, direction *lin.V3) bool {
	a, b, c, d := s.a, s.b, s.c, s.d

	var ao, ab, ac, ad, abc, acd, adb lin.V3
	ao.Neg(&a)
	ab.Sub(&b, &a)
	ac.Sub(&c, &a)
	ad.Sub(&d, &a)
	abc.Cross(&ab, &ac)
	acd.Cross(&ac, &ad)
	adb.Cross(&ad, &ab)

	planes := uint8(0)
	if abc.Dot(&ao) >= 0.0 {
		planes |= 0x1
	}
	if acd.Dot(&ao) >= 0.0 {
		planes |= 0x2
	}
	if adb.Dot(&ao) >= 0.0 {
		planes |= 0x4
	}

	switch planes {
	case 0x0:
		return true
	case 0x1:
		var t lin.V3
		t.Cross(&abc, &ac)
		if t.Dot(&ao) >= 0.0 {
			if ac.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, c, 2
				*direction = tripleCross(ac, ao, ac)
			} else if ab.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, b, 2
				*direction = tripleCross(ab, ao, ab)
			} else {
				s.a, s.num = a, 1
				*direction = ao
			}
			return false
		}
		var t2 lin.V3
		t2.Cross(&ab, &abc)
		if t2.Dot(&ao) >= 0.0 {
			if ab.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, b, 2
				*direction = tripleCross(ab, ao, ab)
			} else {
				s.a, s.num = a, 1
				*direction = ao
			}
			return false
		}
		s.a, s.b, s.c, s.num = a, b, c, 3
		*direction = abc
		return false
	case 0x2:
		var t lin.V3
		t.Cross(&acd, &ad)
		if t.Dot(&ao) >= 0.0 {
			if ad.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, d, 2
				*direction = tripleCross(ad, ao, ad)
			} else if ac.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, c, 2
				*direction = tripleCross(ab, ao, ab)
			} else {
				s.a, s.num = a, 1
				*direction = ao
			}
			return false
		}
		var t2 lin.V3
		t2.Cross(&ac, &acd)
		if t2.Dot(&ao) >= 0.0 {
			if ac.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, c, 2
				*direction = tripleCross(ac, ao, ac)
			} else {
				s.a, s.num = a, 1
				*direction = ao
			}
			return false
		}
		s.a, s.b, s.c, s.num = a, c, d, 3
		*direction = acd
		return false
	case 0x3:
		if ac.Dot(&ao) >= 0.0 {
			s.a, s.b, s.num = a, c, 2
			*direction = tripleCross(ac, ao, ac)
		} else {
			s.a, s.num = a, 1
			*direction = ao
		}
		return false
	case 0x4:
		var t lin.V3
		t.Cross(&adb, &ab)
		if t.Dot(&ao) >= 0.0 {
			if ab.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, b, 2
				*direction = tripleCross(ab, ao, ab)
			} else if ad.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, d, 2
				*direction = tripleCross(ad, ao, ad)
			} else {
				s.a, s.num = a, 1
				*direction = ao
			}
			return false
		}
		var t2 lin.V3
		t2.Cross(&ad, &adb)
		if t2.Dot(&ao) >= 0.0 {
			if ad.Dot(&ao) >= 0.0 {
				s.a, s.b, s.num = a, d, 2
				*direction = tripleCross(ad, ao, ad)
			} else {
				s.a, s.num = a, 1
				*direction = ao
			}
			return false
		}
		s.a, s.b, s.c, s.num = a, d, b, 3
		*direction = adb
		return false
	case 0x5:
		if ab.Dot(&ao) >= 0.0 {
			s.a, s.b, s.num = a, b, 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.a, s.num = a, 1
			*direction = ao
		}
		return false
	case 0x6:
		if ad.Dot(&ao) >= 0.0 {
			s.a, s.b, s.num = a, d, 2
			*direction = tripleCross(ad, ao, ad)
		} else {
			s.a, s.num = a, 1
			*direction = ao
		}
		return false
	default: // 0x7
		s.a, s.num = a, 1
		*direction = ao
		return false
	}
}

func doSimplex(s *simplex, direction *lin.V3) bool {
	switch s.num {
	case 2:
		return doSimplex2(s, direction)
	case 3:
		return doSimplex3(s, direction)
	case 4:
		return doSimplex4(s, direction)
	}
	return false
}

// maxGJKIterations bounds the support-point refinement loop. 100 matches
// the teacher's gjk_collides; any convex pair that hasn't separated or
// converged by then is logged and treated as non-intersecting.
const maxGJKIterations = 100

// Intersects runs GJK on the Minkowski difference of a and b, returning
// true and the terminating simplex if they overlap.
func Intersects(a, b Supporter) (s simplex, hit bool) {
	s.a = supportOfMinkowskiDifference(a, b, lin.V3{X: 0, Y: 0, Z: 1})
	s.num = 1
	var direction lin.V3
	direction.Scale(&s.a, -1)
	for i := 0; i < maxGJKIterations; i++ {
		next := supportOfMinkowskiDifference(a, b, direction)
		if next.Dot(&direction) < 0.0 {
			return s, false
		}
		addToSimplex(&s, next)
		if doSimplex(&s, &direction) {
			return s, true
		}
	}
	return s, false
}
