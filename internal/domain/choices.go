package domain

import (
	"strings"

	"github.com/visionmark/visionmark/pkg/common"
)

// Choice a value/label pair of a closed enumeration
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func choiceLabel(choices []Choice, value string) (string, bool) {
	for _, c := range choices {
		if c.Value == value {
			return c.Label, true
		}
	}
	return "", false
}

func assignID(id *int64) {
	if *id == 0 {
		*id = common.UUIDint64()
	}
}

// MediaURL joins the media url prefix and a stored relative path; an empty
// path yields "".
func MediaURL(prefix, rel string) string {
	if rel == "" {
		return ""
	}
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") {
		return rel
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(rel, "/")
}
