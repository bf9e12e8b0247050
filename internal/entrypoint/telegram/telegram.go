package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bankledger/internal/dispatch"
	"bankledger/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type invoker interface {
	Invoke(ctx context.Context, op string, payload []byte) dispatch.Response
	Operations() []string
}

type Bot struct {
	api     *tgbotapi.BotAPI
	adminID int64
	log     logrus.FieldLogger

	idempotenceUsecase *usecase.Idempotence
	invoker            invoker

	commands map[string]func(ctx context.Context, args string) (*reply, error)
}

func New(
	token string,
	adminID int64,
	idempotenceUsecase *usecase.Idempotence,
	invoker invoker,
	log logrus.FieldLogger,
) (*Bot, error) {

	botApi, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newBot(adminID, idempotenceUsecase, invoker, log)
	b.api = botApi

	return b, nil
}

func newBot(adminID int64, idempotenceUsecase *usecase.Idempotence, invoker invoker, log logrus.FieldLogger) *Bot {
	b := &Bot{
		adminID: adminID,
		log:     log,

		idempotenceUsecase: idempotenceUsecase,
		invoker:            invoker,

		commands: make(map[string]func(ctx context.Context, args string) (*reply, error)),
	}

	for _, op := range invoker.Operations() {
		b.Register(op, b.invokeCommand(op))
	}
	b.Register("help", b.help)
	b.Register("start", b.help)

	return b
}

func (b *Bot) Register(command string, handler func(ctx context.Context, args string) (*reply, error)) {
	b.commands[command] = handler
}

func (b *Bot) Start(ctx context.Context) {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = 60

	updates := b.api.GetUpdatesChan(config)
	go b.HandleUpdates(ctx, updates)
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		user := update.SentFrom()
		if user == nil || user.ID != b.adminID {
			continue
		}

		if ok, err := b.checkIfFirstHandle(update); err != nil {
			b.log.WithError(err).Error("idempotence check failed")
			continue
		} else if !ok {
			continue
		}

		if update.Message != nil {
			if !update.Message.IsCommand() {
				continue
			}

			reply, err := b.handle(ctx, update.Message.Command(), update.Message.CommandArguments())
			if err != nil {
				b.handleError(update.Message, err)
				continue
			}

			message := tgbotapi.NewMessage(update.Message.Chat.ID, reply.text)
			if reply.inlineKeyboard != nil {
				message.ReplyMarkup = reply.inlineKeyboard
			}

			if _, err := b.api.Send(message); err != nil {
				b.log.WithError(err).Error("send reply")
			}
		}

		if update.CallbackQuery != nil {
			if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
				b.log.WithError(err).Warn("answer callback")
			}

			ca := strings.SplitN(update.CallbackQuery.Data, " ", 2)
			if len(ca) != 2 || update.CallbackQuery.Message == nil {
				continue
			}

			reply, err := b.handle(ctx, ca[0], ca[1])
			if err != nil {
				b.handleError(update.CallbackQuery.Message, err)
				continue
			}

			message := tgbotapi.NewMessage(update.CallbackQuery.Message.Chat.ID, reply.text)
			if reply.inlineKeyboard != nil {
				message.ReplyMarkup = reply.inlineKeyboard
			}

			if _, err := b.api.Send(message); err != nil {
				b.log.WithError(err).Error("send reply")
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, command, args string) (*reply, error) {
	handler, ok := b.commands[command]
	if !ok {
		return nil, fmt.Errorf("unknown command /%s, see /help", command)
	}
	return handler(ctx, args)
}

func (b *Bot) checkIfFirstHandle(update tgbotapi.Update) (bool, error) {
	return b.idempotenceUsecase.Execute(updateKey(update))
}

func updateKey(update tgbotapi.Update) string {
	id := "telegram"
	if update.Message != nil {
		id += strconv.FormatInt(update.Message.Chat.ID, 10) + ":" + strconv.Itoa(update.Message.MessageID)
	} else if update.CallbackQuery != nil {
		id += ":cb:" + update.CallbackQuery.ID
	} else {
		id += ":update:" + strconv.Itoa(update.UpdateID)
	}
	return id
}

func (b *Bot) invokeCommand(op string) func(ctx context.Context, args string) (*reply, error) {
	return func(ctx context.Context, args string) (*reply, error) {
		resp := b.invoker.Invoke(ctx, op, []byte(args))
		if !resp.OK() {
			return nil, errors.New(resp.Message)
		}
		return renderReply(op, resp), nil
	}
}

func (b *Bot) help(_ context.Context, _ string) (*reply, error) {
	var text strings.Builder
	text.WriteString("Send /<operation> <json arguments>, for example\n")
	text.WriteString(`/deposit {"accountId":"123","amount":50}`)
	text.WriteString("\n\nOperations:\n")
	for _, op := range b.invoker.Operations() {
		text.WriteString("/" + op + "\n")
	}
	return &reply{text: text.String()}, nil
}

func (b *Bot) handleError(message *tgbotapi.Message, err error) {
	_, err = b.api.Send(tgbotapi.NewMessage(message.Chat.ID, err.Error()))
	if err != nil {
		b.log.WithError(err).Error("send error reply")
	}
}
