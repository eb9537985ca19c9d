package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
)

const (
	maxNameLen     = 80
	maxRoleLen     = 120
	maxAvatarLen   = 16
	maxVoiceLen    = 1000
	maxCategoryLen = 40
)

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// MaxLen limits v to limit characters.
func MaxLen(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// -------- Request specific helpers ----------

// PersonaDraft validates a custom persona. Name and role are mandatory.
func PersonaDraft(d model.PersonaDraft) error {
	if err := NonEmpty("name", d.Name); err != nil {
		return err
	}
	if err := NonEmpty("role", d.Role); err != nil {
		return err
	}
	checks := []struct {
		field string
		v     string
		limit int
	}{
		{"name", d.Name, maxNameLen},
		{"role", d.Role, maxRoleLen},
		{"avatar", d.Avatar, maxAvatarLen},
		{"voice", d.Voice, maxVoiceLen},
		{"category", d.Category, maxCategoryLen},
	}
	for _, c := range checks {
		if err := MaxLen(c.field, c.v, c.limit); err != nil {
			return err
		}
	}
	return nil
}

// AdvisorIDs validates a board update body.
func AdvisorIDs(ids []string) error {
	if ids == nil {
		return fmt.Errorf("advisorIds is required")
	}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("advisorIds[%d] is empty", i)
		}
	}
	return nil
}
