package session

import (
	"net/url"
	"strings"
)

const shareTemplate = "Check out my Video NFT 📽️\r%s minted on #Influenpeer.\r\r" +
	"🛠️ Built on @Superchain\r 🌐 Powered by @Zora\r\r" +
	"Create your #Influenpeer here 👇 https://www.influenpeer.com"

// ExplorerTxURL links a transaction on the block explorer.
func ExplorerTxURL(base, txHash string) string {
	return strings.TrimRight(base, "/") + "/tx/" + txHash
}

// ShareURL is a tweet intent announcing the mint of assetName.
func ShareURL(assetName string) string {
	text := strings.Replace(shareTemplate, "%s", assetName, 1)
	return "https://twitter.com/intent/tweet?text=" + escape(text)
}

// escape percent-encodes s for a query value, with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
