// Package deckimport turns markdown sources into decks and cards. A
// source is a local directory or a git repository; each markdown file in
// it becomes a deck, and Q:/A: blocks separated by "---" become cards.
// Cards are identified by a hash of their normalized content, so edits
// replace the card rather than mutating it.
package deckimport

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ParsedCard is the raw front/back text of one card as read from a file.
type ParsedCard struct {
	Front string
	Back  string
}

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
)

type parseState int

const (
	seeking parseState = iota
	readingFront
	readingBack
)

// ParseFile reads a deck file from the given path and extracts all cards.
func ParseFile(path string) ([]ParsedCard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. A card starts at
// a "Q:" line, its answer at the following "A:" line; either may span
// multiple lines. "---" closes the current card; a new "Q:" does too.
// Cards without a front are dropped.
func Parse(r io.Reader) ([]ParsedCard, error) {
	scanner := bufio.NewScanner(r)
	var cards []ParsedCard
	var current ParsedCard
	var block []string
	state := seeking

	closeBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch state {
		case readingFront:
			current.Front = content
		case readingBack:
			current.Back = content
		}
		block = nil
	}

	closeCard := func() {
		closeBlock()
		if current.Front != "" {
			cards = append(cards, current)
		}
		current = ParsedCard{}
		state = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "---":
			closeCard()
		case strings.HasPrefix(line, frontPrefix):
			if state != seeking {
				closeCard()
			}
			closeBlock()
			state = readingFront
			block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, frontPrefix), " "))
		case strings.HasPrefix(line, backPrefix):
			closeBlock()
			state = readingBack
			block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, backPrefix), " "))
		case state != seeking:
			block = append(block, line)
		}
	}
	closeCard() // Finish the very last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}
