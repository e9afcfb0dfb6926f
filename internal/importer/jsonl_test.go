package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/niharm/paisatrail/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessages(t *testing.T) {
	input := `{"dedupHash":"h1","amountPaisa":45000,"timestampUtcMillis":1752494400000,"merchantName":"SWIGGY","accountLast4":"1234","isDebit":true,"counterpartyType":"BUSINESS","rawText":"Rs.450.00 debited"}

{"dedupHash":"h2","amountPaisa":100000,"timestampUtcMillis":1752498000000,"merchantName":"Ravi Kumar","isDebit":true,"counterpartyType":"PERSON","upiId":"ravi@oksbi"}
`

	messages, err := ReadMessages(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, messages, 2)

	first := messages[0]
	assert.Equal(t, "h1", first.Hash)
	assert.Equal(t, int64(45000), first.AmountPaisa)
	assert.Equal(t, time.UnixMilli(1752494400000).UTC(), first.Date)
	assert.Equal(t, "SWIGGY", first.MerchantName)
	assert.Equal(t, "1234", first.AccountLast4)
	assert.Equal(t, model.CounterpartyBusiness, first.CounterpartyType)
	require.NotNil(t, first.IsDebit)
	assert.True(t, *first.IsDebit)

	second := messages[1]
	assert.Equal(t, model.CounterpartyPerson, second.CounterpartyType)
	assert.Equal(t, "ravi@oksbi", second.UPIID)
}

func TestReadMessages_MissingDirectionIsNil(t *testing.T) {
	input := `{"dedupHash":"h1","amountPaisa":45000,"timestampUtcMillis":1752494400000}`

	messages, err := ReadMessages(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Nil(t, messages[0].IsDebit)
	assert.Equal(t, model.CounterpartyUnknown, messages[0].CounterpartyType)
}

func TestReadMessages_MalformedLineFailsWholeRead(t *testing.T) {
	input := `{"dedupHash":"h1","amountPaisa":45000,"timestampUtcMillis":1752494400000}
not json
{"dedupHash":"h2","amountPaisa":100,"timestampUtcMillis":1752494400000}`

	_, err := ReadMessages(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadMessages_Empty(t *testing.T) {
	messages, err := ReadMessages(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, messages)
}
