package training

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// An Alpha Progression CSV export is a sequence of sessions separated by blank lines:
//
//	"Push · Day 1 · Week 4";"2026-02-17 5:04 h";"1:12 hr"
//	"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps"
//	#;KG;REPS;RIR
//	1;102,5;6;0
//
// Numbers use decimal commas and bodyweight exercises prefix the added load with "+". Warm-up
// sets live in the second column of the exercise header and are not imported.
var (
	alphaSessionRe  = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2})\s+\d{1,2}:\d{2}\s+h";"(.*)"$`)
	alphaExerciseRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.*)")?$`)
	alphaSetRe      = regexp.MustCompile(`^(\d+);([^;]+);(\d+);([^;]*)$`)
	alphaColumnsRe  = regexp.MustCompile(`^#;KG;REPS;RIR$`)
)

type alphaSession struct {
	name      string
	date      time.Time
	exercises []alphaExercise
}

type alphaExercise struct {
	name      string
	equipment string
	sets      []alphaSet
}

type alphaSet struct {
	weightKg       float64
	bodyweightPlus bool
	reps           int
	// rir is negative when the export left the column empty.
	rir float64
}

// parseAlpha reads an Alpha Progression export. Lines it does not recognise, such as notes, are
// ignored.
func parseAlpha(r io.Reader) ([]alphaSession, error) {
	var (
		sessions []alphaSession
		current  *alphaSession
		lineNo   int
	)
	flush := func() {
		if current != nil {
			sessions = append(sessions, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))

		switch {
		case line == "":
			flush()
		case alphaColumnsRe.MatchString(line):
		case alphaSessionRe.MatchString(line):
			flush()
			m := alphaSessionRe.FindStringSubmatch(line)
			date, err := time.Parse(time.DateOnly, m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: parse session date %q: %w", lineNo, m[2], err)
			}
			current = &alphaSession{name: m[1], date: date, exercises: nil}
		case alphaExerciseRe.MatchString(line):
			if current == nil {
				return nil, fmt.Errorf("line %d: exercise outside a session", lineNo)
			}
			m := alphaExerciseRe.FindStringSubmatch(line)
			current.exercises = append(current.exercises, alphaExercise{
				name:      strings.TrimSpace(m[2]),
				equipment: strings.TrimSpace(m[3]),
				sets:      nil,
			})
		case alphaSetRe.MatchString(line):
			if current == nil || len(current.exercises) == 0 {
				return nil, fmt.Errorf("line %d: set outside an exercise", lineNo)
			}
			set, err := parseAlphaSet(alphaSetRe.FindStringSubmatch(line))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ex := &current.exercises[len(current.exercises)-1]
			ex.sets = append(ex.sets, set)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	flush()

	return sessions, nil
}

func parseAlphaSet(m []string) (alphaSet, error) {
	weightStr := strings.TrimSpace(m[2])
	set := alphaSet{weightKg: 0, bodyweightPlus: false, reps: 0, rir: -1}
	if rest, ok := strings.CutPrefix(weightStr, "+"); ok {
		set.bodyweightPlus = true
		weightStr = rest
	}
	var err error
	if set.weightKg, err = parseDecimalComma(weightStr); err != nil {
		return alphaSet{}, fmt.Errorf("parse weight: %w", err)
	}
	if set.reps, err = strconv.Atoi(m[3]); err != nil {
		return alphaSet{}, fmt.Errorf("parse reps: %w", err)
	}
	if rirStr := strings.TrimSpace(m[4]); rirStr != "" {
		if set.rir, err = parseDecimalComma(rirStr); err != nil {
			return alphaSet{}, fmt.Errorf("parse RIR: %w", err)
		}
	}
	return set, nil
}

// parseDecimalComma parses "102,5" as well as "102.5".
func parseDecimalComma(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return f, nil
}

// repsInReserve rounds the exported RIR to whole reps. It returns nil when the set has no RIR.
func (s alphaSet) repsInReserve() *int {
	if s.rir < 0 {
		return nil
	}
	n := int(math.Round(s.rir))
	return &n
}

// usable reports whether the set carries a load the strength estimate can use. Bodyweight sets
// without added load have none.
func (s alphaSet) usable() bool {
	return s.weightKg > 0 && s.reps > 0
}
