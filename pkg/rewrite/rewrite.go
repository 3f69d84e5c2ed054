// Package rewrite mints per-response component identifiers so a client can
// disambiguate submissions of the same screen rendered more than once.
package rewrite

import (
	"strconv"
	"strings"
	"time"

	"github.com/sahayakhq/sahayak/pkg/models"
)

// Separator is reserved in component ids. Submitted form keys are split on
// the first occurrence and only the prefix is considered.
const Separator = "$"

// Timestamp returns the per-response suffix value.
func Timestamp() int64 {
	return time.Now().Unix()
}

// Screen returns a copy of the screen with every component id suffixed by
// "$ts" and every submit button's collect_fields rewritten through the same
// mapping. The catalog-owned input is never modified.
//
// The work is intentionally three passes: collect_fields names are gathered
// before any id changes, so rewriting cannot depend on tree order.
func Screen(screen *models.UIScreen, ts int64) *models.UIScreen {
	if screen == nil {
		return nil
	}

	out := screen.Clone()
	suffix := Separator + strconv.FormatInt(ts, 10)

	// Pass 1: names referenced by any submit button.
	referenced := make(map[string]struct{})

	out.Walk(func(c *models.Component) {
		for _, name := range c.CollectFields() {
			referenced[name] = struct{}{}
		}
	})

	// Pass 2: mint new ids.
	mapping := make(map[string]string, len(referenced))

	out.Walk(func(c *models.Component) {
		if c.ID == "" {
			return
		}

		minted := c.ID + suffix
		mapping[c.ID] = minted
		c.ID = minted
	})

	// Pass 3: rewrite collect_fields; names without a mapping pass through.
	out.Walk(func(c *models.Component) {
		fields := c.CollectFields()
		if fields == nil {
			return
		}

		rewritten := make([]string, len(fields))

		for i, name := range fields {
			if minted, ok := mapping[name]; ok {
				rewritten[i] = minted
			} else {
				rewritten[i] = name
			}
		}

		c.SetCollectFields(rewritten)
	})

	return out
}

// Screens rewrites a batch of screens with one shared timestamp.
func Screens(screens []*models.UIScreen, ts int64) []*models.UIScreen {
	if screens == nil {
		return nil
	}

	out := make([]*models.UIScreen, len(screens))
	for i, s := range screens {
		out[i] = Screen(s, ts)
	}

	return out
}

// BaseKey strips the minted suffix from a submitted form key: "email$1701"
// binds "email". Keys without a separator come back unchanged.
func BaseKey(key string) string {
	if i := strings.Index(key, Separator); i >= 0 {
		return key[:i]
	}

	return key
}
