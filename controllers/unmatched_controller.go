package controllers

import (
	"errors"

	"freight-app/models"
	"freight-app/repositories"
	"freight-app/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type UnmatchedController struct {
	Repo  *repositories.GoodsRepository
	Match *services.MatchService
}

func NewUnmatchedController(repo *repositories.GoodsRepository, match *services.MatchService) *UnmatchedController {
	return &UnmatchedController{Repo: repo, Match: match}
}

type unmatchedGroupView struct {
	repositories.UnmatchedGroup
	Items       []models.WarehouseItem `json:"items"`
	Suggestions []services.Suggestion  `json:"suggestions"`
}

// GetUnmatchedGroups returns the review queue: every shipping mark with
// pending items, each group already carrying its items and the ranked
// customer suggestions for it.
func (c *UnmatchedController) GetUnmatchedGroups(ctx *fiber.Ctx) error {
	var containerID *uint
	if id := ctx.QueryInt("container_id", 0); id > 0 {
		v := uint(id)
		containerID = &v
	}

	groups, err := c.Repo.GetUnmatchedGroups(containerID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve unmatched groups"})
	}

	views := make([]unmatchedGroupView, 0, len(groups))
	for _, group := range groups {
		view := unmatchedGroupView{UnmatchedGroup: group}

		items, err := c.Repo.GetUnmatchedItems(group.NormalizedMark, containerID)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve group items"})
		}
		view.Items = items

		suggestions, err := c.Match.SuggestCustomers(group.ShippingMark)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to rank suggestions"})
		}
		view.Suggestions = suggestions

		views = append(views, view)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Unmatched groups retrieved successfully",
		"data": fiber.Map{
			"groups": views,
			"total":  len(views),
		},
	})
}

// GetSuggestions ranks customers for one mark, for re-querying while the
// operator edits the mark in the review dialog.
func (c *UnmatchedController) GetSuggestions(ctx *fiber.Ctx) error {
	mark := ctx.Query("mark")
	if mark == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "mark is required"})
	}

	suggestions, err := c.Match.SuggestCustomers(mark)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to rank suggestions"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Suggestions retrieved successfully",
		"data":    suggestions,
	})
}

// Resolve applies one operator decision to a whole shipping mark group.
func (c *UnmatchedController) Resolve(ctx *fiber.Ctx) error {
	var req services.ResolveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID := int(ctx.Locals("userID").(float64))

	resolved, customer, err := c.Match.ResolveGroup(&req, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoUnmatchedItems):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrCustomerNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrMarkTaken):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrUnknownAction):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	data := fiber.Map{
		"action":   req.Action,
		"resolved": resolved,
	}
	if customer != nil {
		data["customer"] = customer
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Group resolved successfully",
		"data":    data,
	})
}
