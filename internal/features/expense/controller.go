package expense

import (
	"time"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/middleware"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExpenseController struct {
	Service ExpenseService
}

func NewExpenseController(service ExpenseService) *ExpenseController {
	return &ExpenseController{Service: service}
}

func requesterFromClaims(claims *utils.UserClaims) (Requester, error) {
	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return Requester{}, err
	}
	cid, err := primitive.ObjectIDFromHex(claims.CompanyID)
	if err != nil {
		return Requester{}, err
	}
	return Requester{UserID: uid, CompanyID: cid, Role: claims.Role}, nil
}

func parseListFilter(ctx *fiber.Ctx) ListFilter {
	filter := ListFilter{
		Status:   common_models.ExpenseStatus(ctx.Query("status")),
		Category: ctx.Query("category"),
		Page:     int64(ctx.QueryInt("page", 1)),
		Limit:    int64(ctx.QueryInt("limit", 20)),
	}
	if from := ctx.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := ctx.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}
	return filter
}

func (c *ExpenseController) SubmitExpense(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	var input SubmitExpenseInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.Submit(ctx.UserContext(), claims.UserID, input)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (c *ExpenseController) ListMyExpenses(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	filter := parseListFilter(ctx)
	expenses, total, err := c.Service.ListMine(ctx.UserContext(), claims.UserID, filter)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    expenses,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func (c *ExpenseController) ListCompanyExpenses(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filter := parseListFilter(ctx)
	expenses, total, err := c.Service.ListCompany(ctx.UserContext(), req, filter)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": expenses, "total": total})
}

func (c *ExpenseController) ListPendingApprovals(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	expenses, err := c.Service.ListPendingApprovals(ctx.UserContext(), req)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": expenses, "total": len(expenses)})
}

func (c *ExpenseController) GetExpense(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	e, err := c.Service.Get(ctx.UserContext(), req, ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": e})
}

func (c *ExpenseController) decide(ctx *fiber.Ctx, approve bool) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		Comment string `json:"comment"`
	}
	// comment body is optional
	_ = ctx.BodyParser(&body)

	e, err := c.Service.Decide(ctx.UserContext(), req, ctx.Params("id"), DecideInput{
		Approve: approve,
		Comment: body.Comment,
	})
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	message := "Expense rejected"
	if approve {
		message = "Approval recorded"
		if e.Status == common_models.ExpenseStatusApproved {
			message = "Expense fully approved"
		}
	}
	return ctx.JSON(fiber.Map{"success": true, "message": message, "data": e})
}

func (c *ExpenseController) ApproveExpense(ctx *fiber.Ctx) error {
	return c.decide(ctx, true)
}

func (c *ExpenseController) RejectExpense(ctx *fiber.Ctx) error {
	return c.decide(ctx, false)
}

func (c *ExpenseController) PayExpense(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		ReimbursementMethod string `json:"reimbursementMethod"`
	}
	// reimbursement method body is optional
	_ = ctx.BodyParser(&body)

	e, err := c.Service.Pay(ctx.UserContext(), req, ctx.Params("id"), body.ReimbursementMethod)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "message": "Expense marked as paid", "data": e})
}

func (c *ExpenseController) AddComment(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.AddComment(ctx.UserContext(), req, ctx.Params("id"), body.Text); err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Comment added"})
}

func (c *ExpenseController) Summary(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filter := parseListFilter(ctx)
	summary, err := c.Service.Summary(ctx.UserContext(), req, filter.From, filter.To)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": summary})
}

func (c *ExpenseController) Export(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)
	req, err := requesterFromClaims(claims)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filter := parseListFilter(ctx)
	filter.Page = 1
	filter.Limit = 1000

	var expenses []Expense
	if req.Role == common_models.RoleAdmin {
		expenses, _, err = c.Service.ListCompany(ctx.UserContext(), req, filter)
	} else {
		expenses, _, err = c.Service.ListMine(ctx.UserContext(), claims.UserID, filter)
	}
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	switch ctx.Query("format", "xlsx") {
	case "csv":
		buf, err := ExportCSV(expenses)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		ctx.Set(fiber.HeaderContentType, "text/csv")
		ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="expenses.csv"`)
		return ctx.Send(buf.Bytes())
	case "json":
		return ctx.JSON(fiber.Map{"success": true, "data": expenses})
	default:
		buf, err := ExportXLSX(expenses)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="expenses.xlsx"`)
		return ctx.Send(buf.Bytes())
	}
}
