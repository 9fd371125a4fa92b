package decks

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/pkg/models"
)

// MultiplicationContent is the payload of a multiplication item.
type MultiplicationContent struct {
	Multiplicand int `json:"multiplicand"` // 2-9
	Multiplier   int `json:"multiplier"`   // 2-99
}

// Multiplication drills the 2-9 × 2-99 tables.
type Multiplication struct{}

func (Multiplication) ID() string   { return MultiplicationID }
func (Multiplication) Name() string { return "Multiplication Tables" }
func (Multiplication) Description() string {
	return "Learn multiplication tables (2-9 × 2-99) with 784 unique problems"
}
func (Multiplication) InputType() deck.InputType { return deck.InputNumeric }

func (m Multiplication) GenerateItems(now time.Time) ([]models.Item, error) {
	items := make([]models.Item, 0, 8*98)
	for a := 2; a <= 9; a++ {
		for b := 2; b <= 99; b++ {
			item, err := newItem(MultiplicationItemID(a, b), MultiplicationID,
				MultiplicationContent{Multiplicand: a, Multiplier: b}, now)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	shuffle(items)
	return items, nil
}

// MultiplicationItemID is the stable id of the a × b item.
func MultiplicationItemID(a, b int) string {
	return fmt.Sprintf("mult-%dx%d", a, b)
}

func (m Multiplication) content(item models.Item) (MultiplicationContent, error) {
	var c MultiplicationContent
	err := decodeContent(item, MultiplicationID, &c)
	return c, err
}

func (m Multiplication) FormatQuestion(item models.Item) (string, error) {
	c, err := m.content(item)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d × %d", c.Multiplicand, c.Multiplier), nil
}

func (m Multiplication) CheckAnswer(item models.Item, raw string) (deck.AnswerCheck, error) {
	c, err := m.content(item)
	if err != nil {
		return deck.AnswerCheck{}, err
	}
	return checkInteger(c.Multiplicand*c.Multiplier, raw), nil
}

func (m Multiplication) CanonicalAnswerDisplay(item models.Item) (string, error) {
	c, err := m.content(item)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(c.Multiplicand * c.Multiplier), nil
}

// SubtractionContent is the payload of a subtraction item.
type SubtractionContent struct {
	Minuend    int `json:"minuend"`    // 2-99
	Subtrahend int `json:"subtrahend"` // 1 to minuend-1
}

// Subtraction drills differences with positive results.
type Subtraction struct{}

func (Subtraction) ID() string   { return SubtractionID }
func (Subtraction) Name() string { return "Subtraction" }
func (Subtraction) Description() string {
	return "Subtraction problems (1-99 − 1-99) with 4,851 unique problems"
}
func (Subtraction) InputType() deck.InputType { return deck.InputNumeric }

func (s Subtraction) GenerateItems(now time.Time) ([]models.Item, error) {
	items := make([]models.Item, 0, 4851)
	for m := 2; m <= 99; m++ {
		for n := 1; n < m; n++ {
			item, err := newItem(fmt.Sprintf("sub-%d-%d", m, n), SubtractionID,
				SubtractionContent{Minuend: m, Subtrahend: n}, now)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	shuffle(items)
	return items, nil
}

func (s Subtraction) content(item models.Item) (SubtractionContent, error) {
	var c SubtractionContent
	err := decodeContent(item, SubtractionID, &c)
	return c, err
}

func (s Subtraction) FormatQuestion(item models.Item) (string, error) {
	c, err := s.content(item)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d − %d", c.Minuend, c.Subtrahend), nil
}

func (s Subtraction) CheckAnswer(item models.Item, raw string) (deck.AnswerCheck, error) {
	c, err := s.content(item)
	if err != nil {
		return deck.AnswerCheck{}, err
	}
	return checkInteger(c.Minuend-c.Subtrahend, raw), nil
}

func (s Subtraction) CanonicalAnswerDisplay(item models.Item) (string, error) {
	c, err := s.content(item)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(c.Minuend - c.Subtrahend), nil
}

func checkInteger(want int, raw string) deck.AnswerCheck {
	got, err := strconv.Atoi(strings.TrimSpace(raw))
	return deck.AnswerCheck{
		Correct:         err == nil && got == want,
		CanonicalAnswer: strconv.Itoa(want),
		UserAnswer:      raw,
	}
}
