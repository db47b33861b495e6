package runner

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Summary holds the counts recovered from harness output
type Summary struct {
	Harness string
	Total   int
	Passed  int
	Failed  int
	Known   bool // false when no summary line was recognized
}

// Parser reads test counts from the output of the supported harnesses.
// Parsing is best-effort: unrecognized output yields an unknown Summary.
type Parser struct {
	harnessLine  *regexp.Regexp
	builtinTotal *regexp.Regexp
	mochaPassing *regexp.Regexp
	mochaFailing *regexp.Regexp
	unittestRan  *regexp.Regexp
	unittestFail *regexp.Regexp
	failureCount *regexp.Regexp
}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{
		// Matches: # harness: mocha
		harnessLine: regexp.MustCompile(`^# harness: (\w+)\s*$`),
		// Matches: Total: 3 | Passed: 2 | Failed: 1 (emoji markers optional)
		builtinTotal: regexp.MustCompile(`Total:\s*(\d+)\s*\|\s*(?:\S+\s*)?Passed:\s*(\d+)\s*\|\s*(?:\S+\s*)?Failed:\s*(\d+)`),
		mochaPassing: regexp.MustCompile(`^\s*(\d+) passing\b`),
		mochaFailing: regexp.MustCompile(`^\s*(\d+) failing\b`),
		unittestRan:  regexp.MustCompile(`^Ran (\d+) tests? in `),
		unittestFail: regexp.MustCompile(`^FAILED \((.*)\)\s*$`),
		failureCount: regexp.MustCompile(`(failures|errors)=(\d+)`),
	}
}

// Parse scans output for a harness marker and summary lines. When several
// summaries appear the last one wins.
func (p *Parser) Parse(output string) Summary {
	var s Summary
	var mochaSeen, ranSeen bool
	var mochaPassed, mochaFailed, ran, unittestFailed int

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := p.harnessLine.FindStringSubmatch(line); m != nil {
			s.Harness = m[1]
			continue
		}
		if m := p.builtinTotal.FindStringSubmatch(line); m != nil {
			s.Total = atoi(m[1])
			s.Passed = atoi(m[2])
			s.Failed = atoi(m[3])
			s.Known = true
			continue
		}
		if m := p.mochaPassing.FindStringSubmatch(line); m != nil {
			mochaPassed = atoi(m[1])
			mochaSeen = true
			continue
		}
		if m := p.mochaFailing.FindStringSubmatch(line); m != nil {
			mochaFailed = atoi(m[1])
			mochaSeen = true
			continue
		}
		if m := p.unittestRan.FindStringSubmatch(line); m != nil {
			ran = atoi(m[1])
			unittestFailed = 0
			ranSeen = true
			continue
		}
		if m := p.unittestFail.FindStringSubmatch(line); m != nil && ranSeen {
			for _, c := range p.failureCount.FindAllStringSubmatch(m[1], -1) {
				unittestFailed += atoi(c[2])
			}
		}
	}

	switch {
	case s.Known:
	case mochaSeen:
		s.Passed = mochaPassed
		s.Failed = mochaFailed
		s.Total = mochaPassed + mochaFailed
		s.Known = true
	case ranSeen:
		s.Total = ran
		s.Failed = unittestFailed
		s.Passed = max(ran-unittestFailed, 0)
		s.Known = true
	}
	return s
}

// Add accumulates counts from another run
func (s *Summary) Add(o Summary) {
	if s.Harness == "" {
		s.Harness = o.Harness
	}
	if !o.Known {
		return
	}
	s.Total += o.Total
	s.Passed += o.Passed
	s.Failed += o.Failed
	s.Known = true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
