package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"grocerify/internal/auth"
	"grocerify/internal/export"
	"grocerify/models"
	"grocerify/repository"
)

func (a *App) registerCommand() *cobra.Command {
	var in repository.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.Users.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.Log.WithFields(logrus.Fields{"user": u.Username, "email": u.Email}).Info("account registered")
			fmt.Fprintf(a.Out, "account %s created\n", u.Username)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Username, "username", "", "new username")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Password, "new-password", "", "password for the new account")
	f.StringVar(&in.ConfirmPassword, "confirm", "", "password again")
	return cmd
}

func (a *App) suggestIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest-id",
		Short: "Print a candidate item id",
		Args:  noArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(a.Out, repository.SuggestItemID(a.Rand))
			return nil
		},
	}
}

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "login",
		Short:       "Check credentials and record the login",
		Args:        noArgs,
		Annotations: withAccess(accessMember),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := auth.RequirePrincipal(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "welcome %s (%s)\n", p.Username, p.Role)
			return nil
		},
	}
}

func (a *App) listCommand() *cobra.Command {
	var category, name string
	var newest bool
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List inventory items",
		Args:        noArgs,
		Annotations: withAccess(accessMember),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := repository.ListItemsParams{NameContains: name}
			if category != "" {
				c := models.Category(category)
				if !c.Valid() {
					return &repository.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
				}
				p.Category = &c
			}
			if newest {
				p.OrderBy = repository.OrderNewestFirst
			}
			items, err := a.Items.List(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.printItems(items)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&name, "name", "", "name contains")
	cmd.Flags().BoolVar(&newest, "newest", false, "order by date added, newest first")
	return cmd
}

func (a *App) showCommand() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:         "show",
		Short:       "Show one item",
		Args:        noArgs,
		Annotations: withAccess(accessMember),
		RunE: func(cmd *cobra.Command, _ []string) error {
			it, err := a.Items.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if it == nil {
				return repository.ErrNotFound
			}
			return a.printItems([]models.Item{*it})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "item id")
	return cmd
}

func (a *App) exportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:         "export",
		Short:       "Export inventory to CSV, newest first",
		Args:        noArgs,
		Annotations: withAccess(accessMember),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			items, err := a.Items.List(ctx, repository.ListItemsParams{OrderBy: repository.OrderNewestFirst})
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := export.WriteCSV(a.Out, items)
				return err
			}
			path := out
			if path == "" {
				path = export.DefaultFilename(a.now())
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			n, werr := export.WriteCSV(f, items)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				return fmt.Errorf("write export: %w", werr)
			}
			var kb float64
			if st, err := os.Stat(path); err == nil {
				kb = float64(st.Size()) / 1024
			}
			a.Log.WithFields(actor(ctx)).WithFields(logrus.Fields{"path": path, "items": n}).Info("inventory exported")
			fmt.Fprintf(a.Out, "exported %d items to %s (%.1f KB)\n", n, path, kb)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default inventory_export_<timestamp>.csv, - for stdout)")
	return cmd
}

// itemFlags binds the five form fields of an item.
func itemFlags(f *pflag.FlagSet, in *repository.ItemInput) {
	f.StringVar(&in.ItemID, "id", "", "item id")
	f.StringVar(&in.Name, "name", "", "item name")
	f.StringVar(&in.Price, "price", "", "unit price, e.g. 4.99")
	f.StringVar(&in.Quantity, "qty", "", "quantity on hand")
	f.StringVar(&in.Category, "category", "", "one of Meat, Vegetables, Fruits, Dairy Products, Beverages")
}

func (a *App) addCommand() *cobra.Command {
	var in repository.ItemInput
	cmd := &cobra.Command{
		Use:         "add",
		Short:       "Add an item (admin)",
		Args:        noArgs,
		Annotations: withAccess(accessAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.ItemID == "" {
				in.ItemID = repository.SuggestItemID(a.Rand)
			}
			it, err := a.Items.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.Log.WithFields(actor(cmd.Context())).WithFields(itemFields(it)).Info("item saved")
			fmt.Fprintf(a.Out, "saved %s\n", it.ItemID)
			return nil
		},
	}
	itemFlags(cmd.Flags(), &in)
	return cmd
}

// updateCommand loads the current record and overlays only the flags that were
// given, so unchanged fields need not be repeated.
func (a *App) updateCommand() *cobra.Command {
	var in repository.ItemInput
	var newID string
	cmd := &cobra.Command{
		Use:         "update",
		Short:       "Update an item (admin)",
		Args:        noArgs,
		Annotations: withAccess(accessAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cur, err := a.Items.GetByID(ctx, in.ItemID)
			if err != nil {
				return err
			}
			if cur == nil {
				return repository.ErrNotFound
			}
			f := cmd.Flags()
			if !f.Changed("name") {
				in.Name = cur.Name
			}
			if !f.Changed("price") {
				in.Price = strconv.FormatFloat(cur.Price, 'f', -1, 64)
			}
			if !f.Changed("qty") {
				in.Quantity = strconv.FormatInt(cur.Quantity, 10)
			}
			if !f.Changed("category") {
				in.Category = string(cur.Category)
			}

			lookupID := in.ItemID
			if f.Changed("new-id") {
				in.ItemID = newID
			}
			it, err := a.Items.Update(ctx, lookupID, in)
			if err != nil {
				return err
			}
			a.Log.WithFields(actor(ctx)).WithFields(itemFields(it)).Info("item updated")
			fmt.Fprintf(a.Out, "updated %s\n", it.ItemID)
			return nil
		},
	}
	itemFlags(cmd.Flags(), &in)
	cmd.Flags().StringVar(&newID, "new-id", "", "rejected: item ids cannot be changed")
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	var id string
	var yes bool
	cmd := &cobra.Command{
		Use:         "delete",
		Short:       "Delete an item (admin)",
		Args:        noArgs,
		Annotations: withAccess(accessAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("%w: delete needs --yes to confirm", ErrUsage)
			}
			ctx := cmd.Context()
			if err := a.Items.Delete(ctx, id); err != nil {
				return err
			}
			a.Log.WithFields(actor(ctx)).WithField("item_id", id).Info("item deleted")
			fmt.Fprintf(a.Out, "deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "item id")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func (a *App) printItems(items []models.Item) error {
	tw := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM ID\tNAME\tPRICE\tQUANTITY\tCATEGORY\tDATE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\t%s\n",
			it.ItemID, it.Name, it.Price, it.Quantity, it.Category, it.DateAdded.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func itemFields(it *models.Item) logrus.Fields {
	return logrus.Fields{
		"item_id":  it.ItemID,
		"name":     it.Name,
		"price":    it.Price,
		"quantity": it.Quantity,
		"category": string(it.Category),
	}
}
