package service

import "strings"

// ParseQuery splits "city", "city,country" or "city,state,country".
func ParseQuery(s string) Query {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 1:
		return Query{City: parts[0]}
	case 2:
		return Query{City: parts[0], Country: parts[1]}
	default:
		return Query{City: parts[0], State: parts[1], Country: strings.Join(parts[2:], ",")}
	}
}
