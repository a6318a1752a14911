package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"draft-desk/internal/model"
	"draft-desk/internal/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func addDraftCommands(root *cobra.Command) {
	createCmd.Flags().String("title", "", "Draft title")
	createCmd.Flags().String("description", "", "Draft description")
	createCmd.Flags().StringArray("tag", nil, "Tag (repeatable)")
	createCmd.Flags().StringArray("image-file", nil, "Image file to embed (repeatable)")

	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().String("description", "", "New description")
	updateCmd.Flags().StringArray("tag", nil, "Replace tags (repeatable)")
	updateCmd.Flags().Bool("clear-tags", false, "Remove all tags")
	updateCmd.Flags().StringArray("image-file", nil, "Replace images (repeatable)")
	updateCmd.Flags().Bool("clear-images", false, "Remove all images")

	root.AddCommand(listCmd, showCmd, createCmd, updateCmd, publishCmd, unpublishCmd, deleteCmd, importCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		drafts, err := a.drafts.List(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tPUBLISHED\tTAGS\tUPDATED")
		for _, d := range drafts {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%s\n", d.ID, d.Title, d.Published, len(d.Tags), d.UpdatedAt.Format("Jan 02, 2006 15:04"))
		}
		return tw.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a draft as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.drafts.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(d)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new unpublished draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		desc, _ := cmd.Flags().GetString("description")
		tags, _ := cmd.Flags().GetStringArray("tag")
		files, _ := cmd.Flags().GetStringArray("image-file")

		images, err := readImages(files)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.drafts.Create(cmd.Context(), model.DraftInput{
			Title:       title,
			Description: desc,
			Tags:        validation.DedupeTags(tags),
			Images:      images,
		})
		if err != nil {
			return err
		}
		log.Info("Draft created", zap.String("id", d.ID))
		return printJSON(d)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change fields of a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.drafts.Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		return printJSON(d)
	},
}

func patchFromFlags(cmd *cobra.Command) (model.DraftPatch, error) {
	var patch model.DraftPatch
	flags := cmd.Flags()

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		patch.Title = &title
	}
	if flags.Changed("description") {
		desc, _ := flags.GetString("description")
		patch.Description = &desc
	}
	if reset, _ := flags.GetBool("clear-tags"); reset {
		patch.Tags = &[]string{}
	} else if flags.Changed("tag") {
		tags, _ := flags.GetStringArray("tag")
		tags = validation.DedupeTags(tags)
		patch.Tags = &tags
	}
	if reset, _ := flags.GetBool("clear-images"); reset {
		patch.Images = &[]string{}
	} else if flags.Changed("image-file") {
		files, _ := flags.GetStringArray("image-file")
		images, err := readImages(files)
		if err != nil {
			return patch, err
		}
		patch.Images = &images
	}
	return patch, nil
}

func setPublishedCmd(use, short string, published bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.drafts.SetPublished(cmd.Context(), args[0], published)
			if err != nil {
				return err
			}
			log.Info("Draft visibility changed", zap.String("id", d.ID), zap.Bool("published", d.Published))
			return nil
		},
	}
}

var (
	publishCmd   = setPublishedCmd("publish", "Make a draft publicly visible", true)
	unpublishCmd = setPublishedCmd("unpublish", "Hide a published draft", false)
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Permanently delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.drafts.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		log.Info("Draft deleted", zap.String("id", args[0]))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [url]",
	Short: "Create a draft from a web article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.importer.Import(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(d)
	},
}

// readImages embeds each file as a base64 data URI.
func readImages(paths []string) ([]string, error) {
	images := make([]string, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		images = append(images, "data:"+http.DetectContentType(raw)+";base64,"+base64.StdEncoding.EncodeToString(raw))
	}
	return images, nil
}
