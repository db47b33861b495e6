package generator

import (
	"regexp"
	"strings"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9-]`)
	nonSnakeChars = regexp.MustCompile(`[^a-z0-9_]`)
	jsIdentifier  = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// SafeName turns an exercise name into a kebab-case file name:
// "celsiusToFahrenheit" becomes "celsius-to-fahrenheit".
func SafeName(name string) string {
	s := camelBoundary.ReplaceAllString(name, "$1-$2")
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	if s == "" {
		return "exercise"
	}
	return s
}

// SnakeName turns an exercise name into a Python module name
func SnakeName(name string) string {
	return snake(SafeName(name))
}

func snake(safe string) string {
	s := strings.ReplaceAll(safe, "-", "_")
	s = nonSnakeChars.ReplaceAllString(s, "")
	if s == "" {
		return "exercise"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "ex_" + s
	}
	return s
}

// Identifier returns name when it is already a valid JavaScript identifier,
// and a camelCase rendering of it otherwise.
func Identifier(name string) string {
	if jsIdentifier.MatchString(name) {
		return name
	}

	parts := strings.Split(SafeName(name), "-")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}

	id := b.String()
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// ClassName returns the unittest class name for an exercise
func ClassName(name string) string {
	var b strings.Builder
	b.WriteString("Test")
	for _, p := range strings.Split(SafeName(name), "-") {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

// reindent strips the common leading whitespace of body and prefixes every
// non-empty line with indent.
func reindent(body, indent string) string {
	body = strings.Trim(body, "\n")
	lines := strings.Split(body, "\n")

	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common == -1 || n < common {
			common = n
		}
	}
	if common < 0 {
		return ""
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = indent + line[common:]
	}
	return strings.Join(lines, "\n")
}
