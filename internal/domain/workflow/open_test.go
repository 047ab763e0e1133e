package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/modxel/internal/domain/binding"
	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/editor"
)

const snippetList = `{"success":true,"total":2,"results":[
	{"id":1,"name":"getResources","description":"lists","snippet":"return 1;"},
	{"id":"2","name":"pdoMenu","description":"menu","snippet":"return 2;"}
]}`

func TestOpenSnippetWithHint(t *testing.T) {
	e := newTestEnv(t).connected()
	e.server.Handle("element/getlistbyclass", snippetList)
	e.interactor.On("Choose", mock.Anything, mock.MatchedBy(func(c editor.Choice) bool {
		return c.Caption == "Modx Snippet" &&
			c.Selected == 1 &&
			assert.ObjectsAreEqual([]string{"getResources", "pdoMenu"}, c.Options)
	})).Return(1, nil).Once()

	require.NoError(t, e.runner.Execute(context.Background(), NewOpen(e.deps, element.Snippet, "PDOMENU")))
	e.interactor.AssertExpectations(t)

	req, ok := e.server.Last("element/getlistbyclass")
	require.True(t, ok)
	assert.Equal(t, "modSnippet", req.Form.Get("element_class"))
	assert.Equal(t, "0", req.Form.Get("limit"))

	buf := e.editor.Active().Last()
	require.NotNil(t, buf)
	assert.Equal(t, "<?php\nreturn 2;", buf.Content())
	assert.Equal(t, binding.Binding{Class: element.Snippet, ID: "2", Name: "pdoMenu", Description: "menu"}, e.registry.Lookup(buf))
	assert.Equal(t, "Modx Element (modSnippet): pdoMenu", buf.Status(binding.StatusKey))
	assert.Equal(t, "/scratch/snippet/pdoMenu", buf.Path())
}

func TestOpenHintWithoutMatchSelectsFirst(t *testing.T) {
	e := newTestEnv(t).connected()
	e.server.Handle("element/getlistbyclass", snippetList)
	e.interactor.On("Choose", mock.Anything, mock.MatchedBy(func(c editor.Choice) bool {
		return c.Selected == 0
	})).Return(0, nil).Once()

	require.NoError(t, e.runner.Execute(context.Background(), NewOpen(e.deps, element.Snippet, "missing")))
	e.interactor.AssertExpectations(t)
}

func TestOpenChunkHasNoPHPHeader(t *testing.T) {
	e := newTestEnv(t).connected()
	e.server.Handle("element/getlistbyclass", `{"success":true,"results":[{"id":42,"name":"header","snippet":"<header>"}]}`)
	e.interactor.OnChoose("Modx Chunk", 0)

	require.NoError(t, e.runner.Execute(context.Background(), NewOpen(e.deps, element.Chunk, "")))

	buf := e.editor.Active().Last()
	require.NotNil(t, buf)
	assert.Equal(t, "<header>", buf.Content())
	assert.Len(t, e.registry.FindBound(element.Chunk, "42"), 1)
}

func TestOpenEmptyList(t *testing.T) {
	e := newTestEnv(t).connected()
	e.server.Handle("element/getlistbyclass", `{"success":true,"total":0,"results":[]}`)

	require.NoError(t, e.runner.Execute(context.Background(), NewOpen(e.deps, element.Plugin, "")))

	assert.Equal(t, []string{"No elements found"}, e.editor.Statuses())
	assert.Nil(t, e.editor.Active().Last())
}

func TestOpenAsksForClass(t *testing.T) {
	e := newTestEnv(t).connected()
	e.server.Handle("element/getlistbyclass", `{"success":true,"results":[{"id":5,"templatename":"Base","content":"<html>"}]}`)
	e.interactor.OnChoose("Modx Element Class", 0)
	e.interactor.OnChoose("Modx Template", 0)

	require.NoError(t, e.runner.Execute(context.Background(), NewOpen(e.deps, 0, "")))
	e.interactor.AssertExpectations(t)

	req, ok := e.server.Last("element/getlistbyclass")
	require.True(t, ok)
	assert.Equal(t, "modTemplate", req.Form.Get("element_class"))

	buf := e.editor.Active().Last()
	require.NotNil(t, buf)
	assert.Equal(t, "<html>", buf.Content())
	assert.Equal(t, "Base", e.registry.Lookup(buf).Name)
}

func TestOpenCancelled(t *testing.T) {
	e := newTestEnv(t).connected()
	e.server.Handle("element/getlistbyclass", snippetList)
	e.interactor.OnChoose("Modx Snippet", -1)

	require.NoError(t, e.runner.Execute(context.Background(), NewOpen(e.deps, element.Snippet, "")))
	assert.Nil(t, e.editor.Active().Last())
	assert.Empty(t, e.editor.Errors())
}

func TestOpenReference(t *testing.T) {
	e := newTestEnv(t).connected()
	e.server.Handle("element/getlistbyclass", `{"success":true,"results":[{"id":1,"name":"other"},{"id":9,"name":"footer","snippet":"<footer>"}]}`)
	source := e.editor.Active().Open("<body>[[$footer? &year=`2024`]]</body>")
	e.interactor.On("Choose", mock.Anything, mock.MatchedBy(func(c editor.Choice) bool {
		return c.Caption == "Modx Chunk" && c.Selected == 1
	})).Return(1, nil).Once()

	wf, err := NewOpenReference(e.deps, source, 10)
	require.NoError(t, err)
	require.NoError(t, e.runner.Execute(context.Background(), wf))
	e.interactor.AssertExpectations(t)

	req, ok := e.server.Last("element/getlistbyclass")
	require.True(t, ok)
	assert.Equal(t, "modChunk", req.Form.Get("element_class"))
	assert.Len(t, e.registry.FindBound(element.Chunk, "9"), 1)

	_, err = NewOpenReference(e.deps, source, 2)
	assert.ErrorIs(t, err, ErrNoReference)
}
