package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/editor"
	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/util"
)

func publishedLabel(p model.Project) string {
	if p.IsPublished {
		return "published"
	}
	return "draft"
}

func (a *app) printProjects(list []model.Project) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tTITLE\tDATE\tSTATUS")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Slug, p.Title, p.ContentDoc().String("date"), publishedLabel(p))
	}
	return tw.Flush()
}

func (a *app) sectionsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "sections", Short: "List, create and delete sections"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.GetSections(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSLUG\tTITLE\tORDER\tACTIVE")
			for _, s := range list.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n", s.ID, s.Slug, s.Title, s.DisplayOrder, s.IsActive)
			}
			return tw.Flush()
		},
	})

	var in model.SectionCreate
	var description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Title == "" {
				return errors.New("--title is required")
			}
			if in.Slug == "" {
				in.Slug = util.Slugify(in.Title)
			}
			if description != "" {
				in.Description = model.Ptr(description)
			}
			s, err := a.client.CreateSection(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.success("Created section %s (%s)", s.Slug, s.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "section title")
	create.Flags().StringVar(&in.Slug, "slug", "", "section slug (default: from the title)")
	create.Flags().StringVar(&description, "description", "", "description")
	create.Flags().IntVar(&in.DisplayOrder, "order", 0, "display order")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a section and its projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteSection(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.success("Deleted section %s", args[0])
			return nil
		},
	})
	return cmd
}

// gigFlags binds the gig form fields. Only flags the user set are copied
// onto a form, so update can start from the stored gig.
type gigFlags struct {
	form editor.GigForm
	file string
}

func (g *gigFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&g.file, "file", "", "read the gig form from a JSON file (- for stdin)")
	f.StringVar(&g.form.Event, "event", "", "event name")
	f.StringVar(&g.form.Collective, "collective", "", "collective or promoter")
	f.StringVar(&g.form.Location, "location", "", "venue or city")
	f.StringVar(&g.form.Date, "date", "", "date, YYYY-MM-DD")
	f.StringVar(&g.form.Time, "time", "", "set time")
	f.StringSliceVar(&g.form.Genre, "genre", nil, "genres")
	f.StringSliceVar(&g.form.Tags, "tags", nil, "tags")
	f.StringVar(&g.form.Description, "description", "", "description")
	f.StringVar(&g.form.Image, "image", "", "flyer image URL")
	f.BoolVar(&g.form.IsPublished, "published", false, "publish the gig")
}

func (g *gigFlags) apply(cmd *cobra.Command, base editor.GigForm) (editor.GigForm, error) {
	if g.file != "" {
		var f editor.GigForm
		if err := readJSONFile(g.file, &f); err != nil {
			return f, err
		}
		return f, nil
	}
	changed := cmd.Flags().Changed
	if changed("event") {
		base.Event = g.form.Event
	}
	if changed("collective") {
		base.Collective = g.form.Collective
	}
	if changed("location") {
		base.Location = g.form.Location
	}
	if changed("date") {
		base.Date = g.form.Date
	}
	if changed("time") {
		base.Time = g.form.Time
	}
	if changed("genre") {
		base.Genre = g.form.Genre
	}
	if changed("tags") {
		base.Tags = g.form.Tags
	}
	if changed("description") {
		base.Description = g.form.Description
	}
	if changed("image") {
		base.Image = g.form.Image
	}
	if changed("published") {
		base.IsPublished = g.form.IsPublished
	}
	return base, nil
}

func (a *app) gigs(cmd *cobra.Command) (*editor.Gigs, error) {
	reg, err := a.sections(cmd.Context())
	if err != nil {
		return nil, err
	}
	return editor.NewGigs(a.client, reg), nil
}

func (a *app) gigsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "gigs", Short: "Manage DJ gigs"}

	var filter editor.GigFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List gigs, drafts included",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gigs(cmd)
			if err != nil {
				return err
			}
			all, err := g.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printProjects(editor.FilterGigs(all, filter))
		},
	}
	list.Flags().StringVar(&filter.Collective, "collective", "", "only this collective")
	list.Flags().StringVar(&filter.Genre, "genre", "", "only gigs tagged with this genre")
	list.Flags().StringVar(&filter.Order, "order", editor.OrderNewest, "date order: desc or asc")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "facets",
		Short: "List the collectives and genres in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gigs(cmd)
			if err != nil {
				return err
			}
			all, err := g.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(map[string][]string{
				"collectives": editor.Collectives(all),
				"genres":      editor.Genres(all),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Print a gig as an editable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gigs(cmd)
			if err != nil {
				return err
			}
			f, err := g.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(f)
		},
	})

	var createFlags gigFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a gig",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gigs(cmd)
			if err != nil {
				return err
			}
			f, err := createFlags.apply(cmd, editor.GigForm{})
			if err != nil {
				return err
			}
			p, err := g.Create(cmd.Context(), f)
			if err != nil {
				return err
			}
			a.success("Created gig %s (%s)", p.Title, p.ID)
			return nil
		},
	}
	createFlags.bind(create)
	cmd.AddCommand(create)

	var updateFlags gigFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a gig; unset flags keep their stored values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gigs(cmd)
			if err != nil {
				return err
			}
			current, err := g.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f, err := updateFlags.apply(cmd, current)
			if err != nil {
				return err
			}
			p, err := g.Update(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			a.success("Updated gig %s", p.Title)
			return nil
		},
	}
	updateFlags.bind(update)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a gig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gigs(cmd)
			if err != nil {
				return err
			}
			if err := g.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.success("Deleted gig %s", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Publish or unpublish a gig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gigs(cmd)
			if err != nil {
				return err
			}
			p, err := a.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err = g.TogglePublish(cmd.Context(), *p)
			if err != nil {
				return err
			}
			a.success("Gig %s is now %s", p.Title, publishedLabel(*p))
			return nil
		},
	})
	return cmd
}

func (a *app) pressKitCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "press-kit", Short: "Edit the DJ press kit"}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the press kit",
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := editor.NewPressKitEditor(a.client).Load(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(pk)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <file>",
		Short: "Replace the press kit from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pk editor.PressKit
			if err := readJSONFile(args[0], &pk); err != nil {
				return err
			}
			if _, err := editor.NewPressKitEditor(a.client).Save(cmd.Context(), pk); err != nil {
				return err
			}
			a.success("Press kit saved")
			return nil
		},
	})
	return cmd
}

func (a *app) setsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "sets", Short: "Edit the DJ sets block"}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the sets block",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := editor.NewSetsEditor(a.client).Load(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(s)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <file>",
		Short: "Replace the sets block from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s editor.Sets
			if err := readJSONFile(args[0], &s); err != nil {
				return err
			}
			if _, err := editor.NewSetsEditor(a.client).Save(cmd.Context(), s); err != nil {
				return err
			}
			a.success("Sets saved")
			return nil
		},
	})
	return cmd
}

func (a *app) blockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Edit singleton blocks (hero, about, contact, ...)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <section> <slug>",
		Short: "Print a singleton block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := editor.NewSingletons(a.client).Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printJSON(b)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <section> <slug> <file>",
		Short: "Save a singleton block from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b editor.Block
			if err := readJSONFile(args[2], &b); err != nil {
				return err
			}
			if _, err := editor.NewSingletons(a.client).Save(cmd.Context(), args[0], args[1], b); err != nil {
				return err
			}
			a.success("Saved %s/%s", args[0], args[1])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "slugs <section>",
		Short: "List the editable blocks of a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printJSON(editor.SingletonSlugs(args[0]))
		},
	})
	return cmd
}

func kindArg(name string) (editor.Kind, error) {
	k, ok := editor.KindByName(name)
	if !ok {
		return k, fmt.Errorf("unknown collection %q: use education, experience or featured", name)
	}
	return k, nil
}

func (a *app) collections(cmd *cobra.Command) (*editor.Collections, error) {
	reg, err := a.sections(cmd.Context())
	if err != nil {
		return nil, err
	}
	return editor.NewCollections(a.client, reg), nil
}

func (a *app) collectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage education, experience and featured project entries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <kind>",
		Short: "List entries in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kindArg(args[0])
			if err != nil {
				return err
			}
			c, err := a.collections(cmd)
			if err != nil {
				return err
			}
			list, err := c.List(cmd.Context(), k)
			if err != nil {
				return err
			}
			return a.printProjects(list)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <kind>",
		Short: "Append a placeholder entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kindArg(args[0])
			if err != nil {
				return err
			}
			c, err := a.collections(cmd)
			if err != nil {
				return err
			}
			p, err := c.Add(cmd.Context(), k)
			if err != nil {
				return err
			}
			a.success("Added %s (%s)", p.Slug, p.ID)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "save <id> <file>",
		Short: "Save an entry from a JSON block file (- for stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b editor.Block
			if err := readJSONFile(args[1], &b); err != nil {
				return err
			}
			c, err := a.collections(cmd)
			if err != nil {
				return err
			}
			if _, err := c.Save(cmd.Context(), args[0], b); err != nil {
				return err
			}
			a.success("Saved %s", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.collections(cmd)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.success("Deleted %s", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Publish or unpublish an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.collections(cmd)
			if err != nil {
				return err
			}
			p, err := a.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err = c.TogglePublish(cmd.Context(), *p)
			if err != nil {
				return err
			}
			a.success("%s is now %s", p.Title, publishedLabel(*p))
			return nil
		},
	})
	return cmd
}

func (a *app) featuredCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "featured", Short: "Edit featured projects"}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Print a featured project as an editable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(editor.FeaturedFromProject(*p))
		},
	})
	save := &cobra.Command{
		Use:   "save [id] <file>",
		Short: "Create (no id) or update a featured project from a JSON form",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, file := "", args[0]
			if len(args) == 2 {
				id, file = args[0], args[1]
			}
			var f editor.FeaturedForm
			if err := readJSONFile(file, &f); err != nil {
				return err
			}
			c, err := a.collections(cmd)
			if err != nil {
				return err
			}
			p, err := c.SaveFeatured(cmd.Context(), id, f)
			if err != nil {
				return err
			}
			a.success("Saved featured project %s (%s)", p.Title, p.ID)
			return nil
		},
	}
	cmd.AddCommand(save)
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show content counts and the most recent gigs",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := editor.NewDashboard(a.client).Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Tech projects:  %d\n", stats.TechProjects)
			fmt.Fprintf(a.out, "DJ gigs:        %d (%d published)\n", stats.DJGigs, stats.PublishedGigs)
			fmt.Fprintf(a.out, "Assets:         %d\n", stats.Assets)
			if len(stats.RecentGigs) == 0 {
				return nil
			}
			fmt.Fprintln(a.out, "\nRecent gigs:")
			for _, p := range stats.RecentGigs {
				date := p.ContentDoc().String("date")
				if d, ok := content.ParseDate(date); ok {
					date = d.Format("Jan 2, 2006")
				}
				fmt.Fprintf(a.out, "  %-14s %s\n", date, p.Title)
			}
			return nil
		},
	}
}
