package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/recipebook/internal/client/models"
	"github.com/dmitrijs2005/recipebook/internal/common"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad recipe id %q", common.ErrorValidation, s)
	}
	return id, nil
}

func (a *App) List(ctx context.Context, name string, mine bool) error {
	items, err := a.recipesService.List(ctx, name, mine)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No recipes found")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCALORIES")
	for _, r := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, r.Calories)
	}
	return tw.Flush()
}

func (a *App) Show(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	r, err := a.recipesService.Get(ctx, id)
	if err != nil {
		return err
	}

	a.printRecipe(r)
	return nil
}

func (a *App) printRecipe(r *models.Recipe) {
	fmt.Fprintf(a.out, "#%d %s\n", r.ID, r.Name)
	if r.Calories != "" {
		fmt.Fprintf(a.out, "Calories: %s\n", r.Calories)
	}
	if r.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", r.Description)
	}
	if r.Ingredients != "" {
		fmt.Fprintf(a.out, "\nIngredients:\n%s\n", r.Ingredients)
	}
	if r.ImageURL != nil {
		fmt.Fprintf(a.out, "\nImage: %s\n", *r.ImageURL)
	}
}

func (a *App) Add(ctx context.Context) error {
	var (
		in  models.RecipeInput
		err error
	)

	if in.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if in.Ingredients, err = GetMultiline(a.reader, "Ingredients", a.out); err != nil {
		return err
	}
	if in.Calories, err = getSimpleText(a.reader, "Calories", a.out); err != nil {
		return err
	}

	r, err := a.recipesService.Create(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created recipe #%d\n", r.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	if err := a.recipesService.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Deleted recipe #%d\n", id)
	return nil
}

func (a *App) Image(ctx context.Context, arg, path string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	url, err := a.recipesService.AttachImage(ctx, id, path)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Image uploaded:", url)
	return nil
}
