package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/worksuite/internal/invoice/domain"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
)

type createInvoiceItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	TaxRate     string `json:"tax_rate"`
}

type createInvoiceRequest struct {
	Currency string                     `json:"currency" binding:"required"`
	DueDate  *time.Time                 `json:"due_date"`
	Items    []createInvoiceItemRequest `json:"items" binding:"required"`
}

type applyPaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference"`
	PaidAt    *time.Time `json:"paid_at"`
}

func (s *Server) createInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items := make([]invoicedomain.CreateInvoiceItem, 0, len(req.Items))
	for _, line := range req.Items {
		quantity, err := decimal.NewFromString(strings.TrimSpace(line.Quantity))
		if err != nil {
			AbortWithError(c, invoicedomain.ErrInvalidItems)
			return
		}
		unitPrice, err := decimal.NewFromString(strings.TrimSpace(line.UnitPrice))
		if err != nil {
			AbortWithError(c, invoicedomain.ErrInvalidItems)
			return
		}
		taxRate := decimal.Zero
		if strings.TrimSpace(line.TaxRate) != "" {
			taxRate, err = decimal.NewFromString(strings.TrimSpace(line.TaxRate))
			if err != nil {
				AbortWithError(c, invoicedomain.ErrInvalidItems)
				return
			}
		}
		items = append(items, invoicedomain.CreateInvoiceItem{
			Description: line.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TaxRate:     taxRate,
		})
	}

	created, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		Currency: req.Currency,
		DueDate:  req.DueDate,
		Items:    items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type transitionInvoiceRequest struct {
	To string `json:"to" binding:"required"`
}

func (s *Server) transitionInvoice(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req transitionInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	to := lifecycledomain.State(strings.ToUpper(strings.TrimSpace(req.To)))
	updated, err := s.invoiceSvc.Transition(c.Request.Context(), id, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) getInvoice(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	found, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) listPayments(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payments, err := s.invoiceSvc.ListPayments(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (s *Server) applyPayment(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req applyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidAmount)
		return
	}

	apply := invoicedomain.ApplyPaymentRequest{
		InvoiceID: id,
		Amount:    amount,
		Method:    invoicedomain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.Method))),
		Reference: req.Reference,
	}
	if req.PaidAt != nil {
		apply.PaidAt = *req.PaidAt
	}

	updated, err := s.invoiceSvc.ApplyPayment(c.Request.Context(), apply)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
