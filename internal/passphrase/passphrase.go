// Package passphrase は人間が記憶しやすいパスフレーズを生成します。
package passphrase

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultWords は Generate が使用する既定の単語数です。
const DefaultWords = 2

// wordlist は短く読みやすい英単語のみで構成します。
// スラッグとして安全な文字（小文字英字）のみを含みます。
var wordlist = []string{
	"amber", "anchor", "apple", "arrow", "aspen", "autumn", "badge", "bamboo",
	"basil", "beacon", "birch", "breeze", "briar", "bridge", "brook", "candle",
	"canyon", "cedar", "cherry", "cinder", "clover", "cobalt", "comet", "coral",
	"cotton", "cricket", "crystal", "dawn", "delta", "drift", "ember", "fable",
	"falcon", "fennel", "fern", "flint", "forest", "fossil", "garnet", "ginger",
	"glade", "granite", "grove", "harbor", "hazel", "heron", "hollow", "indigo",
	"iris", "ivory", "jasper", "juniper", "kestrel", "lagoon", "lantern", "larch",
	"lilac", "linden", "lotus", "maple", "marble", "meadow", "mercury", "mist",
	"nectar", "nimbus", "ocean", "olive", "onyx", "opal", "orchid", "osprey",
	"pebble", "pepper", "petal", "pine", "plume", "prairie", "quartz", "raven",
	"reef", "ridge", "river", "robin", "saffron", "sage", "sequoia", "shadow",
	"sierra", "silver", "sparrow", "spruce", "summit", "tansy", "thistle", "timber",
	"topaz", "tulip", "velvet", "walnut", "willow", "wren", "yarrow", "zephyr",
}

// Generate は words 個の単語と2桁の数字をハイフンで連結したパスフレーズを返します。
// 例: "cedar-lantern-47"
func Generate(words int) (string, error) {
	if words <= 0 {
		words = DefaultWords
	}

	parts := make([]string, 0, words+1)
	for i := 0; i < words; i++ {
		idx, err := randomInt(len(wordlist))
		if err != nil {
			return "", fmt.Errorf("パスフレーズの生成に失敗しました: %w", err)
		}
		parts = append(parts, wordlist[idx])
	}

	num, err := randomInt(100)
	if err != nil {
		return "", fmt.Errorf("パスフレーズの生成に失敗しました: %w", err)
	}
	parts = append(parts, fmt.Sprintf("%02d", num))

	return strings.Join(parts, "-"), nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
