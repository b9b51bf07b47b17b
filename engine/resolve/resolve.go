// Package resolve maps segment references typed by the player or written
// in scripts to segment indices.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/spinwheel/engine/wheel"
)

// AmbiguityError indicates multiple segments matched a reference.
type AmbiguityError struct {
	Ref        string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Ref, names)
}

// NotFoundError indicates no segment matched a reference.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("there is no segment %q on the wheel", e.Ref)
}

// Segment resolves ref against segs and returns a 0-based index.
//
// Accepted forms, tried in order: a 1-based position ("3"), an exact
// segment ID, a case-insensitive name, a word of the name, and finally a
// unique name prefix.
func Segment(segs []wheel.Segment, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, &NotFoundError{Ref: ref}
	}

	// 1. Position.
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(segs) {
			return n - 1, nil
		}
		return -1, &NotFoundError{Ref: ref}
	}

	// 2. Exact ID.
	for i, seg := range segs {
		if seg.ID != "" && seg.ID == ref {
			return i, nil
		}
	}

	refLower := strings.ToLower(ref)

	// 3-4. Name or a word of the name; underscores count as spaces.
	matches := collect(segs, func(seg wheel.Segment) bool {
		return matchesName(seg, refLower)
	})
	if len(matches) == 0 {
		// 5. Prefix.
		matches = collect(segs, func(seg wheel.Segment) bool {
			return strings.HasPrefix(strings.ToLower(seg.Name), refLower)
		})
	}

	switch len(matches) {
	case 0:
		return -1, &NotFoundError{Ref: ref}
	case 1:
		return matches[0], nil
	default:
		// Exact full-name hits win over word hits.
		var exact []int
		for _, i := range matches {
			if strings.ToLower(segs[i].Name) == refLower {
				exact = append(exact, i)
			}
		}
		if len(exact) == 1 {
			return exact[0], nil
		}
		names := make([]string, len(matches))
		for j, i := range matches {
			names[j] = fmt.Sprintf("%d:%s", i+1, segs[i].Name)
		}
		return -1, &AmbiguityError{Ref: ref, Candidates: names}
	}
}

func collect(segs []wheel.Segment, match func(wheel.Segment) bool) []int {
	var out []int
	for i, seg := range segs {
		if match(seg) {
			out = append(out, i)
		}
	}
	return out
}

// matchesName checks a segment's name (case-insensitive) and its ID with
// underscore normalization, e.g. "gold bar" matches ID "gold_bar".
func matchesName(seg wheel.Segment, refLower string) bool {
	nameLower := strings.ToLower(seg.Name)
	if nameLower == refLower {
		return true
	}
	for _, word := range strings.Fields(nameLower) {
		if word == refLower {
			return true
		}
	}
	if seg.ID != "" && strings.ReplaceAll(refLower, " ", "_") == strings.ToLower(seg.ID) {
		return true
	}
	return false
}
