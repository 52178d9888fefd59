// Package crdt содержит логические часы регионов и правила арбитража
// конкурирующих версий документа, по которым регионы сходятся к одному состоянию.
package crdt
