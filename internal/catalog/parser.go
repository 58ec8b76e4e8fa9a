package catalog

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/recalld/recalld/internal/domain"
)

// Cards are plain markdown blocks:
//
//	Q: question text (may continue on following lines)
//	A: answer text
//	C: optional context
//	D: optional difficulty, 1..5
//
// A new Q: or a "---" separator starts the next card.
const (
	questionPrefix   = "Q:"
	answerPrefix     = "A:"
	contextPrefix    = "C:"
	difficultyPrefix = "D:"

	defaultDifficulty = 3
)

type section int

const (
	none section = iota
	inQuestion
	inAnswer
	inContext
	inDifficulty
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Item ids are not
// assigned here; the catalog hashes cards after parsing.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var cards []domain.Card
	var b builder

	for scanner.Scan() {
		line := scanner.Text()

		if line == "---" {
			cards = b.finish(cards)
			continue
		}

		switch {
		case strings.HasPrefix(line, questionPrefix):
			if b.sec != none { // a new question always starts a new card
				cards = b.finish(cards)
			}
			b.start(inQuestion, line[len(questionPrefix):])
		case strings.HasPrefix(line, answerPrefix):
			b.start(inAnswer, line[len(answerPrefix):])
		case strings.HasPrefix(line, contextPrefix):
			b.start(inContext, line[len(contextPrefix):])
		case strings.HasPrefix(line, difficultyPrefix):
			b.start(inDifficulty, line[len(difficultyPrefix):])
		default:
			if b.sec != none {
				b.block = append(b.block, line)
			}
		}
	}
	cards = b.finish(cards)

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

type builder struct {
	card  domain.Card
	sec   section
	block []string
}

func (b *builder) start(sec section, firstLine string) {
	b.flush()
	b.sec = sec
	b.block = append(b.block, strings.TrimPrefix(firstLine, " "))
}

// flush assigns the accumulated block to the current section.
func (b *builder) flush() {
	if len(b.block) == 0 {
		return
	}
	content := strings.TrimRight(strings.Join(b.block, "\n"), " \t\n")
	switch b.sec {
	case inQuestion:
		b.card.Question = content
	case inAnswer:
		b.card.Answer = content
	case inContext:
		b.card.Context = content
	case inDifficulty:
		b.card.Difficulty = parseDifficulty(content)
	}
	b.block = nil
}

// finish completes the card in progress, appending it if it has a
// question, and resets the builder.
func (b *builder) finish(cards []domain.Card) []domain.Card {
	b.flush()
	if b.card.Question != "" {
		if b.card.Difficulty == 0 {
			b.card.Difficulty = defaultDifficulty
		}
		cards = append(cards, b.card)
	}
	b.card = domain.Card{}
	b.sec = none
	return cards
}

func parseDifficulty(s string) int {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultDifficulty
	}
	if d < 1 {
		d = 1
	}
	if d > 5 {
		d = 5
	}
	return d
}
