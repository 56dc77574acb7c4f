package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/texture"
)

// catalogUploader stands in for the GPU during inspection. It hands out sequential texture handles
// starting after the default white texture, as the renderer does.
type catalogUploader struct {
	textures []*texture.Texture
}

func (u *catalogUploader) UploadTexture(tex *texture.Texture) (int, error) {
	u.textures = append(u.textures, tex)
	tex.Handle = len(u.textures)
	return tex.Handle, nil
}

func newInspectCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.gltf|file.glb>",
		Short: "Import a model without a GPU and print its batches and materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.NewLoader(loader.WithLogger(root.logger))
			uploader := &catalogUploader{}
			m, err := l.Load(args[0], uploader)
			if err != nil {
				return err
			}
			return printModel(cmd.OutOrStdout(), m, uploader.textures)
		},
	}
}

// printModel writes one row per batch in key order, followed by the texture list.
func printModel(out io.Writer, m *model.Model, textures []*texture.Texture) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "model\t%s\n", m.Path)
	fmt.Fprintf(tw, "batches\t%d\n", len(m.Batches))
	fmt.Fprintf(tw, "vertices\t%d\n\n", m.VertexCount())

	fmt.Fprintln(tw, "MATERIAL\tVERTICES\tALBEDO\tMETALNESS\tROUGHNESS")
	for _, key := range m.Keys() {
		albedo := "-"
		metal, rough := "-", "-"
		if mat, ok := m.Materials.Lookup(key); ok {
			if mat.AlbedoTexture != model.TextureUnset {
				albedo = fmt.Sprintf("#%d", mat.AlbedoTexture)
			}
			metal = fmt.Sprintf("%.2f", mat.Metalness)
			rough = fmt.Sprintf("%.2f", mat.Roughness)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", key, m.Batches[key].VertexCount(), albedo, metal, rough)
	}

	if len(textures) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TEXTURE\tWIDTH\tHEIGHT")
		for _, tex := range textures {
			fmt.Fprintf(tw, "#%d\t%d\t%d\n", tex.Handle, tex.Width, tex.Height)
		}
	}
	return tw.Flush()
}
