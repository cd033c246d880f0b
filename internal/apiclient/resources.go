package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aTrapDeer/utworld/internal/model"
)

func (c *Client) GetSections(ctx context.Context) (*model.SectionList, error) {
	var out model.SectionList
	if err := c.call(ctx, http.MethodGet, "/sections", nil, &out, "Failed to fetch sections", false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSection(ctx context.Context, in model.SectionCreate) (*model.Section, error) {
	var out model.Section
	if err := c.callJSON(ctx, http.MethodPost, "/sections", in, &out, "Failed to create section", false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSection(ctx context.Context, id string, in model.SectionUpdate) (*model.Section, error) {
	var out model.Section
	if err := c.callJSON(ctx, http.MethodPut, "/sections/"+url.PathEscape(id), in, &out, "Failed to update section", false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSection(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/sections/"+url.PathEscape(id), nil, nil, "Failed to delete section", false)
}

// GetProjects lists projects, optionally scoped to one section.
func (c *Client) GetProjects(ctx context.Context, sectionID string, publishedOnly bool) (*model.ProjectList, error) {
	q := url.Values{}
	q.Set("published_only", strconv.FormatBool(publishedOnly))
	if sectionID != "" {
		q.Set("section_id", sectionID)
	}
	var out model.ProjectList
	if err := c.call(ctx, http.MethodGet, "/projects?"+q.Encode(), nil, &out, "Failed to fetch projects", false); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProjectsBySectionSlug resolves slug through GetSections and lists that
// section's projects. It costs an extra round trip; cache section ids when
// calling repeatedly.
func (c *Client) GetProjectsBySectionSlug(ctx context.Context, slug string, publishedOnly bool) (*model.ProjectList, error) {
	sections, err := c.GetSections(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range sections.Items {
		if s.Slug == slug {
			return c.GetProjects(ctx, s.ID, publishedOnly)
		}
	}
	return nil, fmt.Errorf("Section %q not found", slug)
}

func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := c.call(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out, "Failed to fetch project", false); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProjectBySlug returns the project with projectSlug in the named
// section, or nil when there is none.
func (c *Client) GetProjectBySlug(ctx context.Context, sectionSlug, projectSlug string) (*model.Project, error) {
	return c.FindProjectBySlugPattern(ctx, sectionSlug, ExactSlug(projectSlug))
}

func (c *Client) CreateProject(ctx context.Context, in model.ProjectCreate) (*model.Project, error) {
	var out model.Project
	if err := c.callJSON(ctx, http.MethodPost, "/projects", in, &out, "Failed to create project", true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject sends a partial update; zero fields of in are omitted.
func (c *Client) UpdateProject(ctx context.Context, id string, in model.ProjectUpdate) (*model.Project, error) {
	var out model.Project
	if err := c.callJSON(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), in, &out, "Failed to update project", true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, "Failed to delete project", false)
}

func (c *Client) PublishProject(ctx context.Context, id string) (*model.Project, error) {
	return c.UpdateProject(ctx, id, model.ProjectUpdate{IsPublished: model.Ptr(true)})
}

func (c *Client) UnpublishProject(ctx context.Context, id string) (*model.Project, error) {
	return c.UpdateProject(ctx, id, model.ProjectUpdate{IsPublished: model.Ptr(false)})
}

// GetProjectsByType returns the section's projects whose extra_data.type
// equals typ.
func (c *Client) GetProjectsByType(ctx context.Context, sectionSlug, typ string) ([]model.Project, error) {
	list, err := c.GetProjectsBySectionSlug(ctx, sectionSlug, false)
	if err != nil {
		return nil, err
	}
	out := []model.Project{}
	for _, p := range list.Items {
		if p.Type() == typ {
			out = append(out, p)
		}
	}
	return out, nil
}

// SlugMatcher matches project slugs. *regexp.Regexp satisfies it.
type SlugMatcher interface {
	MatchString(string) bool
}

// ExactSlug matches one slug literally.
type ExactSlug string

func (s ExactSlug) MatchString(slug string) bool { return string(s) == slug }

// FindProjectBySlugPattern returns the first project in the section whose
// slug matches, or nil.
func (c *Client) FindProjectBySlugPattern(ctx context.Context, sectionSlug string, pattern SlugMatcher) (*model.Project, error) {
	list, err := c.GetProjectsBySectionSlug(ctx, sectionSlug, false)
	if err != nil {
		return nil, err
	}
	for i := range list.Items {
		if pattern.MatchString(list.Items[i].Slug) {
			return &list.Items[i], nil
		}
	}
	return nil, nil
}

func (c *Client) GetAssets(ctx context.Context, projectID, fileType string) (*model.AssetList, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("project_id", projectID)
	}
	if fileType != "" {
		q.Set("file_type", fileType)
	}
	var out model.AssetList
	if err := c.call(ctx, http.MethodGet, "/assets?"+q.Encode(), nil, &out, "Failed to fetch assets", false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var out model.Asset
	if err := c.call(ctx, http.MethodGet, "/assets/"+url.PathEscape(id), nil, &out, "Failed to fetch asset", false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAsset(ctx context.Context, id string, in model.AssetUpdate) (*model.Asset, error) {
	var out model.Asset
	if err := c.callJSON(ctx, http.MethodPut, "/assets/"+url.PathEscape(id), in, &out, "Failed to update asset", false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/assets/"+url.PathEscape(id), nil, nil, "Failed to delete asset", false)
}

// GetContent fetches the public aggregate without credentials.
func (c *Client) GetContent(ctx context.Context) (model.Content, error) {
	resp, err := c.send(ctx, http.MethodGet, "/content", nil, "")
	if err != nil {
		return nil, err
	}
	var out model.Content
	if err := finish(resp, &out, fmt.Sprintf("Failed to fetch content: %d", resp.StatusCode), false); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAllContent is GetContent under the name the site uses.
func (c *Client) FetchAllContent(ctx context.Context) (model.Content, error) {
	return c.GetContent(ctx)
}

// FetchSectionContent fetches one section of the public aggregate.
func (c *Client) FetchSectionContent(ctx context.Context, slug string) (*model.SectionContent, error) {
	resp, err := c.send(ctx, http.MethodGet, "/content/"+url.PathEscape(slug), nil, "")
	if err != nil {
		return nil, err
	}
	var out model.SectionContent
	if err := finish(resp, &out, fmt.Sprintf("Failed to fetch section: %d", resp.StatusCode), false); err != nil {
		return nil, err
	}
	return &out, nil
}
