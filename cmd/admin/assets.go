package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aTrapDeer/utworld/internal/apiclient"
	"github.com/aTrapDeer/utworld/internal/model"
)

func (a *app) assetsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "assets", Short: "Upload, list and delete media"}

	var projectID, altText, caption string
	upload := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]apiclient.Upload, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				files = append(files, apiclient.Upload{Name: filepath.Base(path), Data: f})
			}

			if len(files) == 1 {
				asset, err := a.client.UploadAsset(cmd.Context(), files[0], projectID, altText, caption)
				if err != nil {
					return err
				}
				a.success("Uploaded %s: %s", asset.OriginalFilename, asset.CloudfrontURL)
				return nil
			}
			assets, err := a.client.UploadMultipleAssets(cmd.Context(), files, projectID)
			if err != nil {
				return err
			}
			for _, asset := range assets {
				a.success("Uploaded %s: %s", asset.OriginalFilename, asset.CloudfrontURL)
			}
			if skipped := len(files) - len(assets); skipped > 0 {
				fmt.Fprintf(a.out, "%s%d file(s) were not stored%s\n", colorRed, skipped, colorReset)
			}
			return nil
		},
	}
	upload.Flags().StringVar(&projectID, "project", "", "attach to this project id")
	upload.Flags().StringVar(&altText, "alt", "", "alt text (single upload)")
	upload.Flags().StringVar(&caption, "caption", "", "caption (single upload)")
	cmd.AddCommand(upload)

	var listProject, fileType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List uploaded assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := a.client.GetAssets(cmd.Context(), listProject, fileType)
			if err != nil {
				return err
			}
			return a.printAssets(assets)
		},
	}
	list.Flags().StringVar(&listProject, "project", "", "only assets of this project id")
	list.Flags().StringVar(&fileType, "type", "", "only this file type (image, video, audio, document)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an asset and its stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteAsset(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.success("Deleted asset %s", args[0])
			return nil
		},
	})
	return cmd
}

func (a *app) printAssets(list *model.AssetList) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tSIZE\tURL")
	for _, as := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", as.ID, as.FileType, as.OriginalFilename, as.FileSize, as.CloudfrontURL)
	}
	fmt.Fprintf(tw, "\n%d total\n", list.Total)
	return tw.Flush()
}
