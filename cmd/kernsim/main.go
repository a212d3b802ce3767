// Command kernsim mounts an ext2 image and runs a scripted sequence of
// namespace operations and scheduler events, printing the resulting
// state — a runnable demonstration of the end-to-end filesystem and
// scheduling behavior.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gokernel/core/blockdev"
	"github.com/gokernel/core/ext2"
	"github.com/gokernel/core/sched"
	"github.com/gokernel/core/vfs"
)

func main() {
	root := &cobra.Command{
		Use:   "kernsim <image-path>",
		Short: "Mount an ext2 image and run a scripted namespace + scheduler demo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runFilesystemDemo(args[0]); err != nil {
				return err
			}
			runSchedulerDemo()
			return nil
		},
	}

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("kernsim failed")
		os.Exit(1)
	}
}

func runFilesystemDemo(path string) error {
	dev, err := blockdev.OpenFileDevice(path, 4096, 4096, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	ext2.RegisterDevice(path, dev)

	v := vfs.New()
	if err := v.Registry.Register(ext2.FSType); err != nil {
		return err
	}
	if _, err := v.InitRootfs("ext2", path); err != nil {
		return err
	}

	root, err := v.PathWalk("/")
	if err != nil {
		return err
	}

	child := &vfs.Dentry{Name: "hello"}
	if _, err := vfs.Create(root, child, vfs.ModeRegular); err != nil {
		return err
	}

	fmt.Printf("created /hello, root now has %d cached children, free inodes = %d\n",
		root.NumChildren(), root.Inode.Sb.Private.(*ext2.Superblock).FreeInodesCount())
	return nil
}

func runSchedulerDemo() {
	s := sched.New(nil)

	kernelThd := sched.NewThread(1, "kernel-thread", sched.KernelPolicy, 0)
	systemThd := sched.NewThread(2, "system-thread", sched.SystemPolicy, 0)
	userA := sched.NewThread(3, "user-a", sched.UserPolicy, 0)
	userB := sched.NewThread(4, "user-b", sched.UserPolicy, 1)

	for _, th := range []*sched.Thread{kernelThd, systemThd, userA, userB} {
		s.QueueThread(th)
	}

	s.Schedule()
	fmt.Printf("ran: %s\n", s.Current().Name)
	s.UpdateThread(s.Current(), sched.Waiting)

	s.Schedule()
	fmt.Printf("ran: %s\n", s.Current().Name)
	s.UpdateThread(s.Current(), sched.Waiting)

	s.Schedule()
	fmt.Printf("ran: %s\n", s.Current().Name)

	for i := 0; i < 8; i++ {
		s.Tick()
	}
	fmt.Printf("after 8 ticks, priorities: user-a=%d user-b=%d\n", userA.Priority, userB.Priority)
}
