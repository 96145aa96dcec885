package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sheetCalc/contracts"
)

type ApiController struct {
	SheetRepository   contracts.SheetRepository
	WebhookDispatcher contracts.WebhookDispatcher
	References        contracts.ReferenceValidator
	Tokenizer         contracts.Tokenizer
}

type CellEndpointParams struct {
	SheetId string `uri:"sheet_id" binding:"required"`
	CellId  string `uri:"cell_id" binding:"required"`
}

type SheetEndpointParams struct {
	SheetId string `uri:"sheet_id" binding:"required"`
}

// SetCellRequest carries either a ready token sequence or a raw expression
// to tokenize server-side. An explicit formula wins.
type SetCellRequest struct {
	Formula []string `json:"formula"`
	Value   string   `json:"value"`
}

type SubscribeRequest struct {
	WebhookUrl string `json:"webhook_url"`
}

func NewApiController(
	sheetRepository contracts.SheetRepository, webhookDispatcher contracts.WebhookDispatcher,
	references contracts.ReferenceValidator, tokenizer contracts.Tokenizer,
) *ApiController {
	return &ApiController{
		SheetRepository:   sheetRepository,
		WebhookDispatcher: webhookDispatcher,
		References:        references,
		Tokenizer:         tokenizer,
	}
}

func (api *ApiController) GetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)

	if err == nil {
		response, err = api.SheetRepository.GetCell(params.SheetId, params.CellId)
	}

	if errors.Is(err, contracts.CellNotFoundError) || errors.Is(err, contracts.SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	} else {
		c.JSON(http.StatusOK, response)
	}
}

func (api *ApiController) SetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SetCellRequest{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	if err == nil {
		formula := contracts.Formula(request.Formula)
		if formula == nil {
			formula = api.Tokenizer.Tokenize(request.Value)
		}

		response, err = api.SheetRepository.SetCell(params.SheetId, params.CellId, formula)
	}

	if errors.Is(err, contracts.CellIdInvalidError) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	} else {
		c.JSON(http.StatusCreated, response)
	}
}

func (api *ApiController) GetSheetAction(c *gin.Context) {
	params := SheetEndpointParams{}
	response := &contracts.CellList{}

	err := c.ShouldBindUri(&params)

	if err == nil {
		response, err = api.SheetRepository.GetCellList(params.SheetId)
	}

	if errors.Is(err, contracts.SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	} else {
		c.JSON(http.StatusOK, response)
	}
}

func (api *ApiController) SubscribeAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SubscribeRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	api.WebhookDispatcher.SetWebhookUrl(
		strings.ToLower(params.SheetId),
		api.References.Canonicalize(params.CellId),
		request.WebhookUrl,
	)

	c.JSON(http.StatusCreated, gin.H{"webhook_url": request.WebhookUrl})
}
