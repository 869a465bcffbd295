package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"inkwell/internal/app"
	"inkwell/internal/config"
	"inkwell/internal/engine"
	"inkwell/internal/model"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Move", "Commit").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

// unlockIfNeeded prompts for the passphrase and unlocks the engine when
// encryption is configured. Commands that read content from an external
// blob store call this first.
func unlockIfNeeded(a *app.App) error {
	if !a.EncryptionConfigured() {
		return nil
	}
	pass, err := promptPassphrase("Passphrase: ")
	if err != nil {
		return err
	}
	return a.Unlock(pass)
}

// readContentArg resolves document content from --file, or stdin when
// the flag is empty.
func readContentArg(cmd *cobra.Command) ([]byte, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading content file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading content from stdin: %w", err)
	}
	return data, nil
}

func kindMarker(n model.Node) string {
	if n.IsFolder() {
		return "d"
	}
	return "-"
}

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Local document workspace with folders, versions and search",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		fmt.Printf("Blob Store: %s\n", cfg.BlobStore.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

// key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage encryption keys",
}

var keyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := promptPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls [PARENT_ID]",
	Short: "List children of a folder (or the root)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		var parent *string
		if len(args) > 0 {
			parent = app.ResolveParent(args[0])
		}

		children, err := a.Engine().Children(parent)
		if err != nil {
			return err
		}

		if len(children) == 0 {
			fmt.Println("Empty.")
			return nil
		}

		for _, c := range children {
			fmt.Printf("%s %3d  %s  %s\n", kindMarker(c), c.SiblingOrder, c.ID, c.Title)
		}
		return nil
	},
}

// tree command
var treeCmd = &cobra.Command{
	Use:   "tree [PARENT_ID]",
	Short: "Show the subtree under a folder (or the whole workspace)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Tree")
		if err != nil {
			return err
		}
		defer a.Close()

		var parent *string
		if len(args) > 0 {
			parent = app.ResolveParent(args[0])
		}

		rows, err := a.Tree(parent)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("Empty.")
			return nil
		}

		for _, row := range rows {
			indent := strings.Repeat("  ", row.Depth)
			fmt.Printf("%s %s%s  (%s)\n", kindMarker(row.Node), indent, row.Node.Title, row.Node.ID)
		}
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create folders and documents",
}

var addFolderCmd = &cobra.Command{
	Use:   "folder TITLE",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentArg, _ := cmd.Flags().GetString("parent")

		a, err := newApp("AddFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		node, err := a.Engine().AddNode(app.ResolveParent(parentArg), model.KindFolder, args[0], nil, nil, nil)
		if err != nil {
			return err
		}

		fmt.Printf("Created folder %s (%s)\n", node.Title, node.ID)
		return nil
	},
}

var addDocCmd = &cobra.Command{
	Use:   "doc TITLE",
	Short: "Create a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentArg, _ := cmd.Flags().GetString("parent")
		file, _ := cmd.Flags().GetString("file")
		docType, _ := cmd.Flags().GetString("doc-type")
		lang, _ := cmd.Flags().GetString("lang")

		a, err := newApp("AddDocument")
		if err != nil {
			return err
		}
		defer a.Close()

		var content []byte
		if file != "" {
			content, err = os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading content file: %w", err)
			}
		}

		var dt, lh *string
		if docType != "" {
			dt = &docType
		}
		if lang != "" {
			lh = &lang
		}

		node, err := a.Engine().AddNode(app.ResolveParent(parentArg), model.KindDocument, args[0], content, dt, lh)
		if err != nil {
			return err
		}

		fmt.Printf("Created document %s (%s)\n", node.Title, node.ID)
		return nil
	},
}

// rename command
var renameCmd = &cobra.Command{
	Use:   "rename ID TITLE",
	Short: "Rename a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Rename")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine().RenameNode(args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Renamed %s\n", args[0])
		return nil
	},
}

// mv command
var mvCmd = &cobra.Command{
	Use:   "mv ID...",
	Short: "Move nodes relative to a target",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetArg, _ := cmd.Flags().GetString("target")
		posArg, _ := cmd.Flags().GetString("pos")

		a, err := newApp("Move")
		if err != nil {
			return err
		}
		defer a.Close()

		target := app.ResolveParent(targetArg)
		if err := a.Engine().MoveNodes(args, target, engine.Position(posArg)); err != nil {
			return err
		}

		fmt.Printf("Moved %d node(s)\n", len(args))
		return nil
	},
}

// dup command
var dupCmd = &cobra.Command{
	Use:   "dup ID...",
	Short: "Duplicate nodes (deep copy of subtrees)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Duplicate")
		if err != nil {
			return err
		}
		defer a.Close()

		copies, err := a.Engine().DuplicateNodes(args)
		if err != nil {
			return err
		}

		for _, c := range copies {
			fmt.Printf("Created %s (%s)\n", c.Title, c.ID)
		}
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm ID...",
	Short: "Delete nodes and their subtrees",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine().DeleteNodes(args); err != nil {
			return err
		}

		fmt.Printf("Deleted %d node(s)\n", len(args))
		return nil
	},
}

// commit command
var commitCmd = &cobra.Command{
	Use:   "commit DOCUMENT_ID",
	Short: "Record a new version of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Commit")
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := readContentArg(cmd)
		if err != nil {
			return err
		}

		v, err := a.Engine().CommitVersion(args[0], content)
		if err != nil {
			return err
		}

		fmt.Printf("Committed version %s (%s)\n", v.ID, v.ContentHash[:12])
		return nil
	},
}

// cat command
var catCmd = &cobra.Command{
	Use:   "cat DOCUMENT_ID",
	Short: "Print the current content of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Cat")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlockIfNeeded(a); err != nil {
			return err
		}

		node, err := a.Engine().GetNode(args[0])
		if err != nil {
			return err
		}
		if node.CurrentContentHash == nil {
			return fmt.Errorf("document has no content yet")
		}

		content, err := a.Engine().ReadContent(*node.CurrentContentHash)
		if err != nil {
			return err
		}

		os.Stdout.Write(content)
		return nil
	},
}

// versions command
var versionsCmd = &cobra.Command{
	Use:   "versions DOCUMENT_ID",
	Short: "List versions of a document, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListVersions")
		if err != nil {
			return err
		}
		defer a.Close()

		versions, err := a.Engine().ListVersions(args[0])
		if err != nil {
			return err
		}

		if len(versions) == 0 {
			fmt.Println("No versions.")
			return nil
		}

		for _, v := range versions {
			fmt.Printf("%s  %s  %s\n", v.ID, v.CreatedAt.Format("2006-01-02 15:04:05"), v.ContentHash[:12])
		}
		return nil
	},
}

// version command (single-version operations)
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Operate on individual versions",
}

var versionCatCmd = &cobra.Command{
	Use:   "cat VERSION_ID",
	Short: "Print the content of a version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("VersionCat")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlockIfNeeded(a); err != nil {
			return err
		}

		content, err := a.Engine().GetVersionContent(args[0])
		if err != nil {
			return err
		}

		os.Stdout.Write(content)
		return nil
	},
}

var versionRmCmd = &cobra.Command{
	Use:   "rm VERSION_ID...",
	Short: "Delete versions from the ledger",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteVersions")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine().DeleteVersions(args); err != nil {
			return err
		}

		fmt.Printf("Deleted %d version(s)\n", len(args))
		return nil
	},
}

var versionRestoreCmd = &cobra.Command{
	Use:   "restore VERSION_ID",
	Short: "Make an old version the current content (as a new version)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RestoreVersion")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlockIfNeeded(a); err != nil {
			return err
		}

		v, err := a.Engine().RestoreVersion(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Restored as version %s\n", v.ID)
		return nil
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search document bodies (or titles with --title)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		byTitle, _ := cmd.Flags().GetBool("title")

		a, err := newApp("Search")
		if err != nil {
			return err
		}
		defer a.Close()

		if byTitle {
			nodes, err := a.Engine().FindByTitle(args[0])
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			for _, n := range nodes {
				path, err := a.NodePath(n.ID)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s\n", n.ID, path)
			}
			return nil
		}

		if err := unlockIfNeeded(a); err != nil {
			return err
		}

		results, err := a.Engine().SearchByBody(args[0], limit)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for _, r := range results {
			path, err := a.NodePath(r.NodeID)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n    %s\n", r.NodeID, path, r.Snippet)
		}
		return nil
	},
}

// template command
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage document templates",
}

var templateAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Create a template from a file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AddTemplate")
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := readContentArg(cmd)
		if err != nil {
			return err
		}

		tmpl, err := a.Engine().CreateTemplate(args[0], string(content))
		if err != nil {
			return err
		}

		fmt.Printf("Created template %s (%s)\n", tmpl.Title, tmpl.ID)
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListTemplates")
		if err != nil {
			return err
		}
		defer a.Close()

		templates, err := a.Engine().ListTemplates()
		if err != nil {
			return err
		}

		if len(templates) == 0 {
			fmt.Println("No templates.")
			return nil
		}

		for _, tmpl := range templates {
			fmt.Printf("%s  %s\n", tmpl.ID, tmpl.Title)
		}
		return nil
	},
}

var templateRmCmd = &cobra.Command{
	Use:   "rm TEMPLATE_ID",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteTemplate")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine().DeleteTemplate(args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted template %s\n", args[0])
		return nil
	},
}

var templateUseCmd = &cobra.Command{
	Use:   "use TEMPLATE_ID TITLE",
	Short: "Create a document from a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentArg, _ := cmd.Flags().GetString("parent")

		a, err := newApp("InstantiateTemplate")
		if err != nil {
			return err
		}
		defer a.Close()

		node, err := a.Engine().InstantiateTemplate(args[0], app.ResolveParent(parentArg), args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Created document %s (%s)\n", node.Title, node.ID)
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Bulk-import a legacy workspace into an empty store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		folders, docs, err := a.ImportLegacy(args[0], format)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d folder(s) and %d document(s)\n", folders, docs)
		return nil
	},
}

// gc command
var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete content blobs no version or document references",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SweepBlobs")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Engine().SweepBlobs()
		if err != nil {
			return err
		}

		fmt.Printf("Removed %d blob(s)\n", count)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// key subcommands
	keyCmd.AddCommand(keyInitCmd)

	// add subcommands
	addCmd.AddCommand(addFolderCmd)
	addCmd.AddCommand(addDocCmd)
	addFolderCmd.Flags().StringP("parent", "p", "", "Parent folder id (default: root)")
	addDocCmd.Flags().StringP("parent", "p", "", "Parent folder id (default: root)")
	addDocCmd.Flags().StringP("file", "f", "", "Initial content file")
	addDocCmd.Flags().String("doc-type", "", "Document type hint (e.g. markdown)")
	addDocCmd.Flags().String("lang", "", "Language hint")

	// version subcommands
	versionCmd.AddCommand(versionCatCmd)
	versionCmd.AddCommand(versionRmCmd)
	versionCmd.AddCommand(versionRestoreCmd)

	// template subcommands
	templateCmd.AddCommand(templateAddCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateRmCmd)
	templateCmd.AddCommand(templateUseCmd)
	templateAddCmd.Flags().StringP("file", "f", "", "Template content file (default: stdin)")
	templateUseCmd.Flags().StringP("parent", "p", "", "Parent folder id (default: root)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(mvCmd)
	mvCmd.Flags().StringP("target", "t", "", "Target node id (default: end of root)")
	mvCmd.Flags().String("pos", "inside", "Placement relative to target: inside, before, after")
	rootCmd.AddCommand(dupCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().StringP("file", "f", "", "Content file (default: stdin)")
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("limit", "n", 20, "Maximum number of results")
	searchCmd.Flags().Bool("title", false, "Match node titles instead of document bodies")
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("format", "auto", "Legacy format: json, yaml, dir, auto")
	rootCmd.AddCommand(gcCmd)
}
