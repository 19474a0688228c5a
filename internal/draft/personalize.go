// Package draft composes a personalized message and types it, unsent, into a
// thread's input field: template personalization, input discovery with an
// ordered selector fallback, human-paced typed input, and post-write
// verification of the rendered text.
package draft

import "strings"

// Personalize merges a first name into the base template. When the name is
// not resolved (or blank after trimming) the template passes through
// untouched. Otherwise the name is spliced in immediately before the first
// '!', or the message is prefixed with a greeting when the template has none.
func Personalize(template, firstName string, nameResolved bool) string {
	name := strings.TrimSpace(firstName)
	if !nameResolved || name == "" {
		return template
	}
	i := strings.IndexByte(template, '!')
	if i < 0 {
		return "What's up " + name + "! " + template
	}
	return template[:i] + " " + name + template[i:]
}
