// Package report renders aggregation results and reference tables as the
// JSON files consumed by the map front end.
package report

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

var keyReplacer = strings.NewReplacer(
	" - ", "-",
	" ", "-",
	"/", "-",
	`\`, "-",
	",", "",
	"(", "",
	")", "",
	"'", "",
	";", "",
)

// LicenseKey derives the file-name key of a license description, e.g.
// "Music and Dance" becomes "music-and-dance".
func LicenseKey(description string) string {
	return keyReplacer.Replace(strings.ToLower(description))
}

// Keys assigns a file-name key to every category. Categories whose
// descriptions collapse to the same key all get "-<code>" appended so no
// category overwrites another's files. The result only depends on the given
// set of categories.
func Keys(descriptions map[string]string) map[string]string {
	byKey := make(map[string][]string)
	for code, desc := range descriptions {
		k := LicenseKey(desc)
		byKey[k] = append(byKey[k], code)
	}

	out := make(map[string]string, len(descriptions))
	for k, codes := range byKey {
		if len(codes) == 1 {
			out[codes[0]] = k
			continue
		}
		sort.Strings(codes)
		zap.L().Warn("license key collision; suffixing with license code",
			zap.String("key", k),
			zap.Strings("codes", codes),
		)
		for _, code := range codes {
			out[code] = k + "-" + LicenseKey(code)
		}
	}
	return out
}
