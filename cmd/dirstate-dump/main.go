// Copyright 2011 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command dirstate-dump is a diagnostic tool: given a directory holding a
// dirstate docket and its data file, it prints the tree structure and how
// long opening and walking it took. It has no role in any workflow; it
// exists to inspect the container format while developing against it.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/maruel/dirstate2"
)

func dump(dir string) error {
	start := time.Now()
	c, err := dirstate.Open(dir)
	if err != nil {
		return err
	}
	defer c.Close()
	tree, err := c.Tree()
	if err != nil {
		return err
	}
	openTook := time.Since(start)

	d := c.Docket()
	fmt.Printf("uuid=%s data_size=%d write_count=%d unreachable_bytes=%d\n",
		d.UUID, d.DataSize, d.Tree.WriteCount, d.Tree.UnreachableBytes)
	fmt.Printf("nodes_with_entry=%d nodes_with_copy_source=%d\n",
		d.Tree.NodesWithEntryCount, d.Tree.NodesWithCopySourceCount)

	walkStart := time.Now()
	count := 0
	var walk func(nodes []*dirstate.TreeNode, depth int) error
	walk = func(nodes []*dirstate.TreeNode, depth int) error {
		for _, n := range nodes {
			count++
			indent := strings.Repeat("  ", depth)
			if e := n.Entry(); e != nil {
				fmt.Printf("%s%s [%c]\n", indent, n.BaseName(), byte(e.V1Data().State))
			} else {
				fmt.Printf("%s%s/\n", indent, n.BaseName())
			}
			kids, err := n.Children()
			if err != nil {
				return err
			}
			if err := walk(kids, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree.Root(), 0); err != nil {
		return err
	}
	walkTook := time.Since(walkStart)

	fmt.Printf("%d nodes; open %s, walk %s\n", count, openTook, walkTook)
	return nil
}

func main() {
	flag.Parse()
	dir := "."
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}
	if err := dump(dir); err != nil {
		fmt.Fprintf(os.Stderr, "dirstate-dump: %v\n", err)
		os.Exit(1)
	}
}
