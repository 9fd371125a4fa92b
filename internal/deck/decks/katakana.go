package decks

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/pkg/models"
)

// KatakanaContent is the payload of a katakana item. The first romaji is
// the primary romanization.
type KatakanaContent struct {
	Character string   `json:"character"`
	Romaji    []string `json:"romaji"`
}

// gojūon order
var katakanaData = []KatakanaContent{
	{"ア", []string{"a"}}, {"イ", []string{"i"}}, {"ウ", []string{"u"}}, {"エ", []string{"e"}}, {"オ", []string{"o"}},
	{"カ", []string{"ka"}}, {"キ", []string{"ki"}}, {"ク", []string{"ku"}}, {"ケ", []string{"ke"}}, {"コ", []string{"ko"}},
	{"サ", []string{"sa"}}, {"シ", []string{"shi", "si"}}, {"ス", []string{"su"}}, {"セ", []string{"se"}}, {"ソ", []string{"so"}},
	{"タ", []string{"ta"}}, {"チ", []string{"chi", "ti"}}, {"ツ", []string{"tsu", "tu"}}, {"テ", []string{"te"}}, {"ト", []string{"to"}},
	{"ナ", []string{"na"}}, {"ニ", []string{"ni"}}, {"ヌ", []string{"nu"}}, {"ネ", []string{"ne"}}, {"ノ", []string{"no"}},
	{"ハ", []string{"ha"}}, {"ヒ", []string{"hi"}}, {"フ", []string{"fu", "hu"}}, {"ヘ", []string{"he"}}, {"ホ", []string{"ho"}},
	{"マ", []string{"ma"}}, {"ミ", []string{"mi"}}, {"ム", []string{"mu"}}, {"メ", []string{"me"}}, {"モ", []string{"mo"}},
	{"ヤ", []string{"ya"}}, {"ユ", []string{"yu"}}, {"ヨ", []string{"yo"}},
	{"ラ", []string{"ra"}}, {"リ", []string{"ri"}}, {"ル", []string{"ru"}}, {"レ", []string{"re"}}, {"ロ", []string{"ro"}},
	{"ワ", []string{"wa"}}, {"ヲ", []string{"wo", "o"}},
	{"ン", []string{"n"}},
}

// Katakana drills reading the 46 basic katakana.
type Katakana struct{}

func (Katakana) ID() string   { return KatakanaID }
func (Katakana) Name() string { return "Katakana" }
func (Katakana) Description() string {
	return fmt.Sprintf("Learn to read basic Katakana characters (%d cards)", len(katakanaData))
}
func (Katakana) InputType() deck.InputType { return deck.InputText }

func (k Katakana) GenerateItems(now time.Time) ([]models.Item, error) {
	items := make([]models.Item, 0, len(katakanaData))
	for _, c := range katakanaData {
		item, err := newItem("katakana-"+c.Character, KatakanaID, c, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	shuffle(items)
	return items, nil
}

func (k Katakana) content(item models.Item) (KatakanaContent, error) {
	var c KatakanaContent
	if err := decodeContent(item, KatakanaID, &c); err != nil {
		return c, err
	}
	if len(c.Romaji) == 0 {
		return c, fmt.Errorf("item %s has no accepted romaji", item.ID)
	}
	return c, nil
}

func (k Katakana) FormatQuestion(item models.Item) (string, error) {
	c, err := k.content(item)
	if err != nil {
		return "", err
	}
	return c.Character, nil
}

func (k Katakana) CheckAnswer(item models.Item, raw string) (deck.AnswerCheck, error) {
	c, err := k.content(item)
	if err != nil {
		return deck.AnswerCheck{}, err
	}
	answer := strings.ToLower(strings.TrimSpace(raw))
	correct := false
	for _, accepted := range c.Romaji {
		if strings.ToLower(accepted) == answer {
			correct = true
			break
		}
	}
	return deck.AnswerCheck{
		Correct:         correct,
		CanonicalAnswer: c.Romaji[0],
		UserAnswer:      raw,
	}, nil
}

// CanonicalAnswerDisplay lists alternatives after the primary romaji, e.g. "shi (or si)".
func (k Katakana) CanonicalAnswerDisplay(item models.Item) (string, error) {
	c, err := k.content(item)
	if err != nil {
		return "", err
	}
	if len(c.Romaji) > 1 {
		return fmt.Sprintf("%s (or %s)", c.Romaji[0], strings.Join(c.Romaji[1:], ", ")), nil
	}
	return c.Romaji[0], nil
}
