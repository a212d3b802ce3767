// Command mkfs formats a file-backed ext2 image, running the Format
// routine against a real file via package blockdev.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gokernel/core/blockdev"
	"github.com/gokernel/core/ext2"
)

func main() {
	var (
		sizeMiB    uint32
		blockSize  uint32
		inodeRatio uint32
	)

	root := &cobra.Command{
		Use:   "mkfs <image-path>",
		Short: "Format a file-backed ext2 image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			blockCount := (sizeMiB * 1024 * 1024) / blockSize

			dev, err := blockdev.OpenFileDevice(path, blockSize, blockCount, true)
			if err != nil {
				return err
			}
			defer dev.Close()

			if err := ext2.Format(dev, ext2.FormatOptions{InodeRatio: inodeRatio}); err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"path":        path,
				"size_mib":    sizeMiB,
				"block_size":  blockSize,
				"block_count": blockCount,
			}).Info("formatted ext2 image")
			return nil
		},
	}

	root.Flags().Uint32Var(&sizeMiB, "size-mib", 16, "image size in MiB")
	root.Flags().Uint32Var(&blockSize, "block-size", 4096, "block size in bytes")
	root.Flags().Uint32Var(&inodeRatio, "inode-ratio", 0, "bytes per inode (0 picks a default)")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("mkfs failed")
		os.Exit(1)
	}
}
