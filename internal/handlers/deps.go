package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/riskbi-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	CatalogSvc      catalogService
	QuerySvc        queryService
	BuilderSvc      builderService
	LibrarySvc      libraryService
	AssistantSvc    assistantService
	UserSvc         userService
}
