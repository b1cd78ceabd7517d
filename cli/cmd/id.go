// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viniarck/kytos/internal/id"
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "print interface and link identifiers",
}

var idInterfaceCmd = &cobra.Command{
	Use:     "interface <switch> <port>",
	Short:   "print the canonical identifier of a switch port",
	Example: "  kytosd id interface 00:00:00:00:00:00:00:01 1",
	Args:    cobra.ExactArgs(2),
	RunE: func(command *cobra.Command, args []string) error {
		iid, err := id.ParseInterfaceID(args[0] + id.Separator + args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(command.OutOrStdout(), iid.String())
		return nil
	},
}

var idLinkCmd = &cobra.Command{
	Use:     "link <interface_a> <interface_b>",
	Short:   "print the identifier of the link between two interfaces",
	Example: "  kytosd id link dpid1:1 dpid2:2",
	Args:    cobra.ExactArgs(2),
	RunE: func(command *cobra.Command, args []string) error {
		a, err := id.ParseInterfaceID(args[0])
		if err != nil {
			return err
		}
		b, err := id.ParseInterfaceID(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(command.OutOrStdout(), id.NewLinkID(a, b).String())
		return nil
	},
}

func init() {
	idCmd.AddCommand(idInterfaceCmd, idLinkCmd)
	rootCmd.AddCommand(idCmd)
}
