package menu

import (
	_ "embed"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"sync"
)

var (
	//go:embed data/sakura.json
	sampleJSON []byte

	//go:embed data/prompts.txt
	promptsText string

	sampleOnce sync.Once
	sample     Restaurant

	prompts = sync.OnceValue(func() []string {
		var out []string
		for line := range strings.SplitSeq(promptsText, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	})
)

// Sample returns a fresh copy of the built-in sushi house menu, shown
// before anything has been generated.
func Sample() Restaurant {
	sampleOnce.Do(func() {
		if err := json.Unmarshal(sampleJSON, &sample); err != nil {
			panic("menu: embedded sample is invalid: " + err.Error())
		}
	})
	return sample.Clone()
}

// ExamplePrompts returns the built-in list of restaurant concepts.
func ExamplePrompts() []string {
	return append([]string(nil), prompts()...)
}

// RandomPrompts returns up to count distinct example prompts in random order.
func RandomPrompts(count int) []string {
	all := ExamplePrompts()
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if count < 0 {
		count = 0
	}
	return all[:min(count, len(all))]
}
