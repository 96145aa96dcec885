package main

import (
	"github.com/gin-gonic/gin"
	"go.etcd.io/bbolt"

	"sheetCalc/contracts"
)

type ServiceContainer struct {
	Database          *bbolt.DB
	ApiController     contracts.ApiController
	SheetRepository   contracts.SheetRepository
	WebhookDispatcher contracts.WebhookDispatcher
	Router            *gin.Engine
}

func BuildServiceContainer(configDbPath string) (container ServiceContainer, err error) {
	container.Database, err = bbolt.Open(configDbPath, 0600, nil)

	references := NewCellReference()
	serializer := NewCellBinarySerializer()
	tokenizer := NewFormulaTokenizer()

	container.WebhookDispatcher = NewWebhookDispatcher()
	container.SheetRepository = NewSheetRepository(container.Database, references, serializer, container.WebhookDispatcher)
	container.ApiController = NewApiController(container.SheetRepository, container.WebhookDispatcher, references, tokenizer)

	container.Router = SetupRouter(container.ApiController)

	return
}
