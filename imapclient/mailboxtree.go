package imapclient

import (
	"strings"

	"github.com/mailwire/imapflow/charset"
)

// NewMailboxTree returns an empty root node for EnsurePath to build onto.
func NewMailboxTree() *MailboxNode {
	return &MailboxNode{Root: true}
}

// EnsurePath walks (creating as needed) the child chain for path, split on
// delimiter, and returns the leaf node (§4.D.10). Each segment's display
// Name is modified-UTF-7 decoded; Path keeps the original encoded prefix.
func EnsurePath(tree *MailboxNode, path, delimiter string) *MailboxNode {
	if delimiter == "" {
		delimiter = "/"
	}
	segments := strings.Split(path, delimiter)
	node := tree
	var prefix []string
	for _, seg := range segments {
		prefix = append(prefix, seg)
		node = ensureChild(node, seg, strings.Join(prefix, delimiter), delimiter)
	}
	return node
}

func ensureChild(parent *MailboxNode, encodedName, encodedPath, delimiter string) *MailboxNode {
	for _, child := range parent.Children {
		if child.Path == encodedPath {
			return child
		}
	}
	name, err := charset.DecodeMailboxName(encodedName)
	if err != nil {
		name = encodedName
	}
	child := &MailboxNode{
		Name:      name,
		Delimiter: delimiter,
		Path:      encodedPath,
	}
	parent.Children = append(parent.Children, child)
	return child
}

// specialUseFlags is the set the core tests node flags against when the
// server advertises SPECIAL-USE (§4.D.10).
var specialUseFlags = map[string]bool{
	`\All`:     true,
	`\Archive`: true,
	`\Drafts`:  true,
	`\Flagged`: true,
	`\Junk`:    true,
	`\Sent`:    true,
	`\Trash`:   true,
}

// specialUseNameDictionary maps lowercased, trimmed folder display names in
// common server locales to the special-use flag they conventionally carry,
// for servers that don't advertise SPECIAL-USE.
var specialUseNameDictionary = map[string]string{
	"sent":          `\Sent`,
	"sent items":    `\Sent`,
	"sent messages": `\Sent`,
	"gesendet":      `\Sent`,
	"envoyes":       `\Sent`,
	"envoyés":       `\Sent`,
	"inviati":       `\Sent`,
	"enviados":      `\Sent`,
	"verzonden":     `\Sent`,
	"skickat":       `\Sent`,
	"lähetetyt":     `\Sent`,
	"отправленные":  `\Sent`,

	"trash":          `\Trash`,
	"deleted":        `\Trash`,
	"deleted items":  `\Trash`,
	"deleted messages": `\Trash`,
	"papierkorb":     `\Trash`,
	"corbeille":      `\Trash`,
	"cestino":        `\Trash`,
	"papelera":       `\Trash`,
	"prullenbak":     `\Trash`,
	"roskakori":      `\Trash`,
	"корзина":        `\Trash`,

	"junk":        `\Junk`,
	"spam":        `\Junk`,
	"junk e-mail": `\Junk`,
	"bulk mail":   `\Junk`,
	"spam-ordner": `\Junk`,
	"nevalidne":   `\Junk`,
	"спам":        `\Junk`,

	"drafts":        `\Drafts`,
	"draft":         `\Drafts`,
	"entwürfe":      `\Drafts`,
	"brouillons":    `\Drafts`,
	"bozze":         `\Drafts`,
	"borradores":    `\Drafts`,
	"concepten":     `\Drafts`,
	"luonnokset":    `\Drafts`,
	"черновики":     `\Drafts`,
}

// CheckSpecialUse tags node with its special-use flag. When the server
// advertises SPECIAL-USE, the first special-use flag among the node's
// flags is used and the name heuristic is not consulted; otherwise the
// node's display name is looked up in specialUseNameDictionary.
func CheckSpecialUse(node *MailboxNode, serverAdvertisesSpecialUse bool) {
	if serverAdvertisesSpecialUse {
		for _, flag := range node.Flags {
			if specialUseFlags[flag] {
				node.SpecialUse = flag
				return
			}
		}
		return
	}

	key := strings.ToLower(strings.TrimSpace(node.Name))
	if flag, ok := specialUseNameDictionary[key]; ok {
		node.Flags = append(node.Flags, flag)
		node.SpecialUse = flag
	}
}
