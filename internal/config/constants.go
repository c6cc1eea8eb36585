package config

const SourceFileExt = ".ws"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".ws", ".wsp"}

// BundleFileExt is the extension of compiled bytecode bundles
const BundleFileExt = ".wsb"
