package git

// HasCherriesForTest exposes hasCherries.
var HasCherriesForTest = hasCherries

// LinesForTest exposes lines.
var LinesForTest = lines
