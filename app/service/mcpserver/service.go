package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"recipechat/app/config"
	"recipechat/app/model"
	"recipechat/app/service/dialogue"
	"recipechat/app/service/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const (
	serverName      = "recipechat"
	serverVersion   = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

type RecipeSearcher interface {
	Retrieve(ctx context.Context, query string) []model.Recipe
}

type FavoriteSource interface {
	Favorites(ctx context.Context, email string) ([]model.Recipe, error)
}

// Service exposes the knowledge base and saved favourites as MCP tools.
type Service struct {
	listen    string
	searcher  RecipeSearcher
	favorites FavoriteSource
	mcp       *server.MCPServer
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		cfg.MCP,
		do.MustInvoke[*dialogue.Service](di).Retriever(),
		do.MustInvoke[*store.Service](di),
	), nil
}

func NewService(cfg config.MCP, searcher RecipeSearcher, favorites FavoriteSource) *Service {
	s := &Service{
		listen:    cfg.Listen,
		searcher:  searcher,
		favorites: favorites,
	}

	s.mcp = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.mcp.AddTool(mcp.NewTool("search_recipes",
		mcp.WithDescription("Search the recipe knowledge base. Returns up to five recipes as a JSON array of objects with title and recipe fields, best match first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Dish name or ingredients, Arabic or English"),
		),
	), s.searchRecipes)

	s.mcp.AddTool(mcp.NewTool("get_favourites",
		mcp.WithDescription("List recipes the user saved to favourites as a JSON array of objects with title and recipe fields."),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email the user registered with"),
		),
	), s.getFavorites)

	return s
}

// Run serves MCP over streamable HTTP until ctx is done. It returns
// immediately when no listen address is configured.
func (s *Service) Run(ctx context.Context) error {
	if s.listen == "" {
		slog.Info("MCP server disabled")
		return nil
	}

	httpServer := server.NewStreamableHTTPServer(s.mcp)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening", "addr", s.listen)
		errCh <- httpServer.Start(s.listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

func (s *Service) searchRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}

	recipes := s.searcher.Retrieve(ctx, query)

	slog.Info("MCP recipe search", "query", query, "results", len(recipes))

	return jsonResult(recipes)
}

func (s *Service) getFavorites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := request.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	favorites, err := s.favorites.Favorites(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return mcp.NewToolResultError("user not found"), nil
		}
		return nil, err
	}

	return jsonResult(favorites)
}

func jsonResult(recipes []model.Recipe) (*mcp.CallToolResult, error) {
	if recipes == nil {
		recipes = []model.Recipe{}
	}

	data, err := json.Marshal(recipes)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(data)), nil
}
