package room

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// Rooms get human-readable adjective-noun slugs ("velvet-otter") instead
// of opaque ids, since guests join by typing or speaking the name.

var nameAdjectives = []string{
	"amber", "ancient", "bold", "brave", "bright", "calm", "clever",
	"cosmic", "crimson", "curious", "dapper", "eager", "electric",
	"emerald", "fuzzy", "gentle", "gilded", "golden", "happy", "hidden",
	"humble", "jolly", "lively", "lucky", "mellow", "midnight", "misty",
	"noble", "opal", "polite", "proud", "quiet", "rapid", "royal",
	"rustic", "silent", "silver", "snappy", "sunny", "swift", "velvet",
	"vivid", "wandering", "wild", "witty",
}

var nameNouns = []string{
	"badger", "bison", "condor", "coyote", "crane", "dolphin", "falcon",
	"ferret", "finch", "fox", "gecko", "heron", "ibis", "jackal",
	"kestrel", "lemur", "lynx", "magpie", "marmot", "meerkat", "mongoose",
	"moose", "narwhal", "ocelot", "osprey", "otter", "owl", "panther",
	"pelican", "puffin", "quokka", "raven", "salmon", "sparrow", "stoat",
	"swan", "tapir", "toucan", "viper", "walrus", "weasel", "wombat",
	"wren", "yak", "zebra",
}

const maxNameAttempts = 5

// GenerateName produces a room slug and verifies it is unused in the
// store, retrying a bounded number of times. Exhausting the attempts
// means the namespace is pathologically full (or the store is lying) and
// surfaces as a hard error rather than looping forever.
func GenerateName(ctx context.Context, store Store) (string, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := fmt.Sprintf("%s-%s",
			nameAdjectives[rand.Intn(len(nameAdjectives))],
			nameNouns[rand.Intn(len(nameNouns))],
		)

		taken, err := store.Exists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("check room name %q: %w", name, err)
		}
		if !taken {
			return name, nil
		}
		log.Warn().Str("name", name).Int("attempt", attempt+1).Msg("room name collision, regenerating")
	}
	return "", ErrNameSpaceExhausted
}
