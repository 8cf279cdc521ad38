package disambiguation

import "strings"

var nameParticles = map[string]bool{
	"von": true, "van": true, "de": true, "du": true, "la": true, "le": true,
	"del": true, "della": true, "di": true, "da": true, "dos": true, "das": true,
	"mc": true, "mac": true, "o'": true,
}

// SurnameKey reduces a creator's full name to the key used for grouping.
// "Jane von Trapp" and "J. von Trapp" both yield "von trapp"; "Bob Marley"
// yields "marley".
func SurnameKey(name string) string {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return strings.ToLower(tokens[0])
	}
	last := strings.ToLower(tokens[len(tokens)-1])
	particle := strings.ToLower(tokens[len(tokens)-2])
	if nameParticles[particle] {
		return particle + " " + last
	}
	return last
}
