// Package markup extracts stanza text blocks from psalm HTML pages.
//
// A page carries its stanzas as a run of sibling <pre> elements. The run starts
// at the first <pre> whose trimmed text begins with "1" and continues through
// every later <pre> sibling under the same parent. Other <pre> runs on the page
// are ignored, so a psalm whose stanzas are split across two separate runs loses
// the second run.
package markup
