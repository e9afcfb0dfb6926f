// Package importer reads normalized parsed-SMS bundles from JSONL
// files produced by the on-device SMS parser.
package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/niharm/paisatrail/internal/model"
)

// wireMessage is the JSONL representation of a parsed SMS bundle.
// Timestamps travel as epoch milliseconds UTC.
type wireMessage struct {
	IsDebit           *bool  `json:"isDebit"`
	DedupHash         string `json:"dedupHash"`
	ReferenceNo       string `json:"referenceNo"`
	MerchantName      string `json:"merchantName"`
	UPIID             string `json:"upiId"`
	AccountLast4      string `json:"accountLast4"`
	CounterpartyType  string `json:"counterpartyType"`
	RawText           string `json:"rawText"`
	AmountPaisa       int64  `json:"amountPaisa"`
	TimestampUTCMilli int64  `json:"timestampUtcMillis"`
	IsUntrustedP2P    bool   `json:"isUntrustedP2P"`
	IsSelfTransfer    bool   `json:"isSelfTransfer"`
}

func (w wireMessage) toModel() model.ParsedMessage {
	cpType := model.CounterpartyUnknown
	switch strings.ToUpper(w.CounterpartyType) {
	case "PERSON":
		cpType = model.CounterpartyPerson
	case "BUSINESS":
		cpType = model.CounterpartyBusiness
	}

	return model.ParsedMessage{
		Date:             time.UnixMilli(w.TimestampUTCMilli).UTC(),
		IsDebit:          w.IsDebit,
		Hash:             w.DedupHash,
		ReferenceNo:      w.ReferenceNo,
		MerchantName:     w.MerchantName,
		UPIID:            w.UPIID,
		AccountLast4:     w.AccountLast4,
		RawText:          w.RawText,
		CounterpartyType: cpType,
		AmountPaisa:      w.AmountPaisa,
		IsUntrustedP2P:   w.IsUntrustedP2P,
		IsSelfTransfer:   w.IsSelfTransfer,
	}
}

// ReadMessages parses one JSON bundle per line, skipping blank lines.
// A malformed line fails the whole read with its line number; partial
// ingests are harder to clean up than a rejected file.
func ReadMessages(r io.Reader) ([]model.ParsedMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var messages []model.ParsedMessage
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var wire wireMessage
		if err := json.Unmarshal([]byte(line), &wire); err != nil {
			return nil, fmt.Errorf("line %d: invalid message: %w", lineNo, err)
		}
		messages = append(messages, wire.toModel())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return messages, nil
}

// ReadMessagesFile reads parsed-SMS bundles from a JSONL file.
func ReadMessagesFile(path string) ([]model.ParsedMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadMessages(f)
}
