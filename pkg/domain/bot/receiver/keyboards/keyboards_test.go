package keyboards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/dialogue"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

func TestForReplyServices(t *testing.T) {
	r := dialogue.Reply{
		Action: dialogue.ActionDisplayServices,
		Services: []model.Service{
			{ID: "a", Name: "Manicure", PriceMinor: 3500},
			{ID: "b", Name: "Pedicure", PriceMinor: 4000},
			{ID: "c", Name: "Gel Nails", PriceMinor: 5500},
		},
	}
	kb, ok := ForReply(r)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 3) // 2 + 1 + reset
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "Manicure $35", kb.InlineKeyboard[0][0].Text)
	require.NotNil(t, kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "svc:3", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, CbReset, *kb.InlineKeyboard[2][0].CallbackData)
}

func TestForReplyBrowsedCatalog(t *testing.T) {
	r := dialogue.Reply{
		Action:   dialogue.ActionDisplayServices,
		Services: []model.Service{{ID: "a", Name: "Manicure"}, {ID: "b", Name: "Pedicure"}},
		Browse:   true,
	}
	kb, ok := ForReply(r)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 1)
	assert.Equal(t, CbBook, *kb.InlineKeyboard[0][0].CallbackData)
}

func TestForReplySlots(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	r := dialogue.Reply{
		Action: dialogue.ActionDisplaySlots,
		Slots: []model.Slot{
			{ID: "1", StartTime: day.Add(9 * time.Hour)},
			{ID: "2", StartTime: day.Add(10*time.Hour + 30*time.Minute)},
		},
	}
	kb, ok := ForReply(r)
	require.True(t, ok)
	assert.Equal(t, "10:30", kb.InlineKeyboard[0][1].Text)
	assert.Equal(t, "t:2", *kb.InlineKeyboard[0][1].CallbackData)
}

func TestForReplyWithoutList(t *testing.T) {
	_, ok := ForReply(dialogue.Reply{Text: "hi"})
	assert.False(t, ok)
	_, ok = ForReply(dialogue.Reply{Action: dialogue.ActionDisplaySlots})
	assert.False(t, ok)
}

func TestUtterance(t *testing.T) {
	cases := []struct {
		data string
		want string
		ok   bool
	}{
		{CbBook, "book an appointment", true},
		{CbMy, "check appointment", true},
		{CbCancel, "cancel appointment", true},
		{CbReset, "start over", true},
		{"svc:2", "2", true},
		{"t:7", "7", true},
		{"t:x", "", false},
		{"other", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			got, ok := Utterance(tc.data)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
