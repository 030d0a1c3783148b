package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for archivevault resources.
	uriScheme = "archivevault://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "archives",
		Name:        "archives",
		Description: "Most recently imported archives",
		MIMEType:    "application/json",
	}, s.handleArchivesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "archives/{archiveId}",
		Name:        "archive",
		Description: "An archive with its extracted fields, attachments and annotations",
		MIMEType:    "application/json",
	}, s.handleArchiveResource)
}

// handleArchivesResource returns the default page of the archive listing.
func (s *Server) handleArchivesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	archives, err := s.ports.Archive.List(ctx, domain.ArchiveFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}

	loc := s.ports.location()
	infos := make([]ArchiveOutput, len(archives))
	for i := range archives {
		infos[i] = toArchiveOutput(&archives[i].Archive, loc)
		infos[i].InstructionNo = archives[i].InstructionNo
		infos[i].Title = archives[i].Title
	}
	return jsonResource(req.Params.URI, infos)
}

// handleArchiveResource returns one archive's detail.
func (s *Server) handleArchiveResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	archiveID := extractArchiveID(req.Params.URI)
	if archiveID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	detail, err := s.ports.Archive.Get(ctx, archiveID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting archive: %w", err)
	}
	return jsonResource(req.Params.URI, toDetailOutput(detail, s.ports.location()))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractArchiveID extracts the archive ID from a URI like archivevault://archives/{archiveId}.
func extractArchiveID(uri string) string {
	const prefix = uriScheme + "archives/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
