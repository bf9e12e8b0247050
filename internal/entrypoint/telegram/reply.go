package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"

	"bankledger/internal/dispatch"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegram rejects messages longer than this
const maxMessageLength = 4096

type reply struct {
	text           string
	inlineKeyboard *tgbotapi.InlineKeyboardMarkup
}

// renderReply turns a successful envelope into a chat message. Single account
// results get a button that lists the account's transactions.
func renderReply(op string, resp dispatch.Response) *reply {
	if len(resp.Payload) == 0 {
		return &reply{text: fmt.Sprintf("%s: done (tx %s)", op, resp.TxID)}
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Payload, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(resp.Payload)
	}

	text := pretty.String()
	if len(text) > maxMessageLength {
		text = text[:maxMessageLength-3] + "..."
	}

	r := &reply{text: text}

	if op == string(dispatch.QueryAccount) {
		var account struct {
			AccountID string `json:"accountId"`
		}
		if err := json.Unmarshal(resp.Payload, &account); err == nil && account.AccountID != "" {
			args, _ := json.Marshal(dispatch.AccountArgs{AccountID: account.AccountID})
			keyboard := newInlineKeyboard(2)
			keyboard.addButton("Transactions", string(dispatch.FetchTransactions)+" "+string(args))
			r.inlineKeyboard = keyboard.markup()
		}
	}

	return r
}
