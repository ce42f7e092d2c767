package extract

// ContentStreamText exposes the content-stream scanner to package tests.
var ContentStreamText = contentStreamText
