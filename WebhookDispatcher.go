package main

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	json "github.com/bytedance/sonic"

	"sheetCalc/contracts"
)

const WebhookWorkersCount = 5

type SheetWebhooks map[string]string

type WebhookSendCommand struct {
	Webhook string
	Cell    *contracts.Cell
}

// WebhookDispatcher posts recalculated cells to subscribed URLs through a
// fixed pool of sender workers. Subscriptions are in-memory only.
type WebhookDispatcher struct {
	queue    chan WebhookSendCommand
	webhooks map[string]SheetWebhooks
}

func NewWebhookDispatcher() *WebhookDispatcher {
	return &WebhookDispatcher{
		queue:    make(chan WebhookSendCommand, 20),
		webhooks: map[string]SheetWebhooks{},
	}
}

func (manager *WebhookDispatcher) SetWebhookUrl(canonicalSheetId string, canonicalCellId string, webhookUrl string) {
	if _, ok := manager.webhooks[canonicalSheetId]; !ok {
		manager.webhooks[canonicalSheetId] = SheetWebhooks{}
	}

	if webhookUrl == "" {
		delete(manager.webhooks[canonicalSheetId], canonicalCellId)
	} else {
		manager.webhooks[canonicalSheetId][canonicalCellId] = webhookUrl
	}
}

func (manager *WebhookDispatcher) GetWebhookUrl(canonicalSheetId string, canonicalCellId string) string {
	if _, ok := manager.webhooks[canonicalSheetId]; !ok {
		return ""
	}

	return manager.webhooks[canonicalSheetId][canonicalCellId]
}

func (manager *WebhookDispatcher) Notify(canonicalSheetId string, cells []*contracts.Cell) {
	if _, ok := manager.webhooks[canonicalSheetId]; !ok {
		return
	}

	go manager.addToQueue(canonicalSheetId, cells)
}

func (manager *WebhookDispatcher) addToQueue(canonicalSheetId string, cells []*contracts.Cell) {
	sheetWebhooks, ok := manager.webhooks[canonicalSheetId]
	if !ok {
		return
	}

	for _, cell := range cells {
		if webhook, subscribed := sheetWebhooks[cell.CanonicalKey]; subscribed {
			manager.queue <- WebhookSendCommand{
				Webhook: webhook,
				Cell:    cell,
			}
		}
	}
}

func (manager *WebhookDispatcher) Start() {
	for i := 0; i < WebhookWorkersCount; i++ {
		go manager.runWebhookSenderWorker()
	}
}

func (manager *WebhookDispatcher) Close() {
	close(manager.queue)
}

func (manager *WebhookDispatcher) runWebhookSenderWorker() {
	client := &http.Client{
		Timeout: time.Second * 5,
	}

	for command := range manager.queue {
		payload, _ := json.Marshal(command.Cell)
		response, err := client.Post(command.Webhook, "application/json", bytes.NewBuffer(payload))

		if err != nil {
			fmt.Printf("Webhook send error: %s\n", err)
		} else if response.StatusCode >= 300 {
			fmt.Printf("Unexpected webhook response HTTP status: %s\n", response.Status)
		}
	}
}
