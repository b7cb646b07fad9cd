package restapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/blinky-z/Board/board"
	"github.com/blinky-z/Board/models"
	"github.com/blinky-z/Board/service/postStore"
)

// PostAPIHandler - used for dependency injection
type PostAPIHandler struct {
	store    postStore.Store
	logInfo  *log.Logger
	logError *log.Logger
}

func NewPostAPIHandler(store postStore.Store, logInfo, logError *log.Logger) *PostAPIHandler {
	return &PostAPIHandler{
		store:    store,
		logInfo:  logInfo,
		logError: logError,
	}
}

// maxRequestBodyLen - a valid post is at most board.MaxContentLen plus board.MaxTitleLen characters, each
// at most 12 bytes when json escaped as a surrogate pair. Bodies above the cap are refused before validation
const maxRequestBodyLen = 64 << 10

// error codes for this API. They follow the draft validation of the board
var (
	// BothFieldsRequired - title or content is empty or whitespace only
	BothFieldsRequired = models.NewRequestErrorCode("BOTH_FIELDS_REQUIRED")
	// TitleTooLong - title is longer than board.MaxTitleLen characters
	TitleTooLong = models.NewRequestErrorCode("TITLE_TOO_LONG")
	// ContentTooLong - content is longer than board.MaxContentLen characters
	ContentTooLong = models.NewRequestErrorCode("CONTENT_TOO_LONG")
)

var validationErrorCodes = map[string]models.RequestErrorCode{
	board.ReasonBothFieldsRequired: BothFieldsRequired,
	board.ReasonTitleTooLong:       TitleTooLong,
	board.ReasonContentTooLong:     ContentTooLong,
}

func validateCreatePostRequest(request *models.CreatePostRequest) models.RequestErrorCode {
	validationError := board.ValidateDraft(board.Draft{Title: request.Title, Content: request.Content})
	if validationError == nil {
		return nil
	}
	return validationErrorCodes[validationError.Reason]
}

// CreatePostHandler - this handler serves post creation requests
func (api *PostAPIHandler) CreatePostHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := models.CreatePostRequest{}
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyLen)).Decode(&request)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logInfo.Printf("Can't create post: body is larger than %d bytes", tooLarge.Limit)
				RespondWithError(w, http.StatusRequestEntityTooLarge, RequestTooLarge)
				return
			}
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		validatePostError := validateCreatePostRequest(&request)
		if validatePostError != nil {
			logInfo.Printf("Can't create post: invalid request. Error: %s", validatePostError)
			RespondWithError(w, http.StatusBadRequest, validatePostError)
			return
		}

		newPost := models.NewPost{
			Title:   request.Title,
			Content: request.Content,
		}
		if err = api.store.Insert(r.Context(), newPost); err != nil {
			logError.Printf("Error saving post: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Post saved. Title: %q", newPost.Title)
		RespondWithBody(w, http.StatusCreated, newPost)
	})
}

// GetPostsHandler - this handler serves requests for all posts, newest first
func (api *PostAPIHandler) GetPostsHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts, err := api.store.ListAll(r.Context())
		if err != nil {
			logError.Printf("Error listing posts: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, posts)
	})
}

// HealthCheckHandler - responds 200 while the server is up
func (api *PostAPIHandler) HealthCheckHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Respond(w, http.StatusOK)
	})
}
