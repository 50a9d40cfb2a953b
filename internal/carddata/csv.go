package carddata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
)

// CSVHeader is the column order ReadCSV expects.
var CSVHeader = []string{
	"name", "kind", "check", "difficulty", "block_zone", "block_modifier",
	"symbols", "keywords", "text", "unique", "vitality", "hand_size",
	"speed", "damage", "attack_zone", "throw", "flash",
	"enhance", "response", "form", "blitz",
}

// ReadCSV decodes a card export with a CSVHeader header row. Symbols and keywords
// are separated by "|".
func ReadCSV(r io.Reader) ([]card.Data, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(CSVHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	for i, col := range CSVHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return nil, fmt.Errorf("csv: column %d is %q, want %q", i+1, header[i], col)
		}
	}

	var out []card.Data
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		data, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		out = append(out, data)
	}
	return out, nil
}

func parseRecord(record []string) (card.Data, error) {
	var (
		data card.Data
		err  error
	)
	p := fieldParser{record: record}

	data.Name = strings.TrimSpace(record[0])
	if data.Name == "" {
		return data, errors.New("missing name")
	}
	if data.Kind, err = card.ParseKind(record[1]); err != nil {
		return data, err
	}
	data.Check = p.int(2)
	data.Difficulty = p.int(3)
	if data.BlockZone, err = card.ParseBlockZone(record[4]); err != nil {
		return data, err
	}
	data.BlockModifier = p.int(5)
	data.Symbols = splitList(record[6])
	data.Keywords = splitList(record[7])
	data.Text = record[8]
	data.Unique = parseBool(record[9])
	data.Vitality = p.int(10)
	data.HandSize = p.int(11)
	data.Speed = p.int(12)
	data.Damage = p.int(13)
	if data.AttackZone, err = card.ParseBlockZone(record[14]); err != nil {
		return data, err
	}
	data.Throw = parseBool(record[15])
	data.Flash = parseBool(record[16])
	data.Enhance = parseBool(record[17])
	data.Response = parseBool(record[18])
	data.Form = parseBool(record[19])
	data.Blitz = parseBool(record[20])

	if p.err != nil {
		return data, p.err
	}
	return data, data.Validate()
}

// fieldParser keeps the first integer conversion error.
type fieldParser struct {
	record []string
	err    error
}

func (p *fieldParser) int(i int) int {
	s := strings.TrimSpace(p.record[i])
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", CSVHeader[i], err)
	}
	return n
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
