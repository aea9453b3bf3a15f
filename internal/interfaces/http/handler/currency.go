package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
	"github.com/pymeboard/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// CurrencyHandler converts between pesos and UF at the configured UF value
type CurrencyHandler struct {
	BaseHandler
	ufValue decimal.Decimal
}

// NewCurrencyHandler creates a new CurrencyHandler. A non-positive ufValue
// falls back to valueobject.DefaultUFValue.
func NewCurrencyHandler(ufValue decimal.Decimal) *CurrencyHandler {
	if !ufValue.IsPositive() {
		ufValue = valueobject.DefaultUFValue
	}
	return &CurrencyHandler{ufValue: ufValue}
}

// ConvertRequest holds the query parameters of a conversion
type ConvertRequest struct {
	Amount string `form:"amount" binding:"required" example:"2.5"`
	From   string `form:"from" binding:"required,oneof=CLP UF" example:"UF"`
}

// ConvertResponse is a conversion result with both amounts formatted for es-CL
type ConvertResponse struct {
	From      string `json:"from" example:"UF"`
	To        string `json:"to" example:"CLP"`
	Amount    string `json:"amount" example:"2.5"`
	Result    string `json:"result" example:"96250"`
	Source    string `json:"source_formatted" example:"UF 2,50"`
	Formatted string `json:"formatted" example:"$96.250"`
	UFValue   string `json:"uf_value" example:"38500"`
}

// Convert godoc
// @ID           convertCurrency
// @Summary      Convert between CLP and UF
// @Description  UF to CLP is rounded to whole pesos; CLP to UF is rounded to two decimals
// @Tags         currency
// @Produce      json
// @Param        amount query string true "Amount to convert"
// @Param        from   query string true "Source currency" Enums(CLP, UF)
// @Success      200 {object} APIResponse[ConvertResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /currency/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidAmount), dto.ErrCodeInvalidAmount, "Monto inválido")
		return
	}

	resp := ConvertResponse{
		From:    req.From,
		Amount:  amount.String(),
		UFValue: h.ufValue.String(),
	}
	switch valueobject.Currency(req.From) {
	case valueobject.UF:
		clp, err := valueobject.ConvertUFToCLP(amount, h.ufValue)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		resp.To = string(valueobject.CLP)
		resp.Result = clp.String()
		resp.Source = valueobject.FormatUF(amount)
		resp.Formatted = valueobject.FormatCLP(clp)
	default:
		uf, err := valueobject.ConvertCLPToUF(amount, h.ufValue)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		resp.To = string(valueobject.UF)
		resp.Result = uf.StringFixed(2)
		resp.Source = valueobject.FormatCLP(amount)
		resp.Formatted = valueobject.FormatUF(uf)
	}
	h.Success(c, resp)
}
